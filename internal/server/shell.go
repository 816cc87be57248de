package server

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// shellPage renders the editor shell: a preview pane that stays current over
// the WebSocket push channel. The editing panel itself talks to /api.
func shellPage() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, shellHTML)
		return err
	})
}

const shellHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>mailframe</title>
<style>
  body { margin: 0; font-family: system-ui, sans-serif; background: #f4f4f5; }
  header { padding: 8px 16px; background: #18181b; color: #fafafa; font-size: 14px; display: flex; gap: 12px; align-items: center; }
  header .status { margin-left: auto; font-size: 12px; color: #a1a1aa; }
  header .status.error { color: #f87171; }
  #preview { max-width: 720px; margin: 24px auto; background: #fff; box-shadow: 0 1px 4px rgba(0,0,0,.12); min-height: 320px; }
  #compile-error { max-width: 720px; margin: 24px auto; padding: 16px; background: #fef2f2; color: #991b1b; font-family: ui-monospace, monospace; font-size: 13px; white-space: pre-wrap; display: none; }
</style>
</head>
<body>
<header>
  <strong>mailframe</strong>
  <span class="status" id="status">connecting…</span>
</header>
<div id="compile-error"></div>
<div id="preview"></div>
<script>
(function () {
  var status = document.getElementById("status");
  var preview = document.getElementById("preview");
  var compileError = document.getElementById("compile-error");

  function connect() {
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    var ws = new WebSocket(proto + "//" + location.host + "/ws");
    ws.onopen = function () {
      status.textContent = "live";
      status.classList.remove("error");
    };
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === "preview") {
        compileError.style.display = "none";
        preview.innerHTML = msg.html;
      } else if (msg.type === "error") {
        compileError.textContent = msg.error;
        compileError.style.display = "block";
      }
    };
    ws.onclose = function () {
      status.textContent = "disconnected";
      status.classList.add("error");
      setTimeout(connect, 1000);
    };
  }
  connect();
})();
</script>
</body>
</html>
`
