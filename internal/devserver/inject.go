package devserver

import "bytes"

const liveReloadScript = `<script>
(function() {
  var url = "ws://" + location.host + "/__quill/ws";
  var ws;
  function connect() {
    ws = new WebSocket(url);
    ws.onmessage = function(e) {
      if (e.data === "reload") {
        location.reload();
      }
    };
    ws.onclose = function() {
      setTimeout(connect, 1000);
    };
  }
  connect();
})();
</script>`

// injectLiveReload inserts the live-reload WebSocket script immediately
// before html's closing </body> tag, or appends it if none is found.
func injectLiveReload(html []byte) []byte {
	script := []byte(liveReloadScript)

	idx := bytes.LastIndex(html, []byte("</body>"))
	if idx == -1 {
		return append(append([]byte{}, html...), script...)
	}

	result := make([]byte, 0, len(html)+len(script))
	result = append(result, html[:idx]...)
	result = append(result, script...)
	result = append(result, html[idx:]...)
	return result
}
