package server

// indexHTML is the browser viewer. It shows the board image with an SVG
// overlay sized to the image's scene rectangle and polls /api/markers at
// the animation interval.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>boardview</title>
<style>
  body { margin: 0; display: flex; height: 100vh; font: 13px system-ui, sans-serif; background: #111; color: #ddd; }
  #side { width: 280px; overflow-y: auto; border-right: 1px solid #333; padding: 8px; }
  #side li { cursor: pointer; padding: 3px 4px; list-style: none; }
  #side li:hover, #side li.active { background: #2a4a2a; }
  #side ul { padding: 0; }
  #stage { flex: 1; position: relative; overflow: hidden; }
  #stage img, #stage svg { position: absolute; left: 0; top: 0; width: 100%; height: 100%; }
  #status { position: absolute; bottom: 4px; right: 8px; color: #888; }
</style>
</head>
<body>
<div id="side">
  <button data-face="top">Top</button>
  <button data-face="bottom">Bottom</button>
  <label>Size <input id="size" type="range" min="0" max="100" value="50"></label>
  <button id="clear">Clear</button>
  <ul id="groups"></ul>
</div>
<div id="stage">
  <img id="board" alt="">
  <svg id="overlay" preserveAspectRatio="xMidYMid meet"></svg>
  <div id="status"></div>
</div>
<script>
const $ = (id) => document.getElementById(id);
let face = "top";

async function api(method, path, body) {
  const res = await fetch(path, {
    method,
    headers: body ? {"Content-Type": "application/json"} : {},
    body: body ? JSON.stringify(body) : undefined,
  });
  if (!res.ok && res.status !== 204) {
    const err = await res.json().catch(() => ({}));
    $("status").textContent = (err.error && err.error.message) || res.statusText;
    return null;
  }
  return res.status === 204 ? null : res.json();
}

async function showFace(f) {
  const st = await api("POST", "/api/face/" + f);
  if (!st) return;
  face = st.face;
  $("board").src = "/api/board/" + face + ".svg?t=" + Date.now();
  if (st.item) $("overlay").setAttribute("viewBox", "0 0 " + st.item.width + " " + st.item.height);
  loadGroups();
}

async function loadGroups() {
  const groups = await api("GET", "/api/groups") || [];
  const ul = $("groups");
  ul.innerHTML = "";
  for (const g of groups) {
    const li = document.createElement("li");
    li.textContent = g.value + " (" + g.label + ")";
    li.title = g.description || "";
    li.onclick = async () => {
      document.querySelectorAll("#groups li").forEach((n) => n.classList.remove("active"));
      li.classList.add("active");
      await api("POST", "/api/select", {value: g.value});
    };
    ul.appendChild(li);
  }
}

function draw(frame) {
  const svg = $("overlay");
  let out = "";
  for (const m of frame.markers) {
    const c = m.center;
    out += '<circle cx="' + c.x + '" cy="' + c.y + '" r="' + m.radius +
      '" stroke="#ff0000" fill="#ffff00" fill-opacity="0.31"/>';
    out += '<path d="M' + (c.x - m.arm) + ' ' + c.y + ' H' + (c.x + m.arm) +
      ' M' + c.x + ' ' + (c.y - m.arm) + ' V' + (c.y + m.arm) + '" stroke="#ff0000"/>';
    out += '<text x="' + (c.x + 10) + '" y="' + (c.y - 10) + '" fill="#ffff00" font-size="12">' +
      m.designator + '</text>';
  }
  svg.innerHTML = out;
}

async function poll() {
  const frame = await api("GET", "/api/markers");
  if (frame) draw(frame);
  setTimeout(poll, 30);
}

$("stage").onclick = async (ev) => {
  const box = $("overlay").viewBox.baseVal;
  if (!box || !box.width) return;
  const r = $("overlay").getBoundingClientRect();
  const scale = Math.min(r.width / box.width, r.height / box.height);
  const x = (ev.clientX - r.left - (r.width - box.width * scale) / 2) / scale;
  const y = (ev.clientY - r.top - (r.height - box.height * scale) / 2) / scale;
  const p = await api("GET", "/api/locate?x=" + x + "&y=" + y);
  if (p) $("status").textContent = p.x_mm.toFixed(2) + ", " + p.y_mm.toFixed(2) + " mm";
};
document.querySelectorAll("[data-face]").forEach((b) => b.onclick = () => showFace(b.dataset.face));
$("size").oninput = (ev) => api("POST", "/api/marker-size", {slider: Number(ev.target.value)});
$("clear").onclick = () => api("DELETE", "/api/select");

showFace(face);
poll();
</script>
</body>
</html>
`
