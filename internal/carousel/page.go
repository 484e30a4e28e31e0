package carousel

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sendrec/showcase/internal/httputil"
	"github.com/sendrec/showcase/internal/playback"
	"github.com/sendrec/showcase/internal/validate"
)

var showcasePageTemplate = template.Must(template.New("showcase").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Carousel}}</title>
    <style nonce="{{.Nonce}}">
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { background: #0a1628; color: #fff; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; }
        .track { display: flex; gap: 16px; padding: 2rem 1rem; overflow: hidden; }
        .slot { position: relative; flex: 0 0 240px; border-radius: 12px; overflow: hidden; background: #000; cursor: pointer; }
        .slot video { width: 100%; display: block; aspect-ratio: 9 / 16; object-fit: cover; }
        .slot .title { position: absolute; left: 8px; bottom: 8px; font-size: 0.8rem; text-shadow: 0 1px 2px #000; }
        .mute-btn { position: absolute; top: 8px; right: 8px; border: none; border-radius: 50%; width: 32px; height: 32px; background: rgba(0, 0, 0, 0.6); color: #fff; cursor: pointer; }
        .live { position: absolute; top: 8px; left: 8px; padding: 2px 8px; border-radius: 4px; background: #00b67a; font-size: 0.7rem; display: none; }
        .slot.active .live { display: block; }
    </style>
</head>
<body>
    <div class="track" id="track" data-mount="{{.MountID}}">
        {{range .Slots}}
        <div class="slot{{if .Active}} active{{end}}" data-slot="{{.Slot}}" data-logical="{{.LogicalIndex}}">
            <video src="{{.Video.URL}}"{{if .Video.Thumbnail}} poster="{{.Video.Thumbnail}}"{{end}} autoplay loop playsinline{{if .Muted}} muted{{end}}></video>
            <span class="live">LIVE</span>
            <button class="mute-btn" type="button" aria-label="{{if .Muted}}Unmute{{else}}Mute{{end}}">{{if .Muted}}&#128263;{{else}}&#128266;{{end}}</button>
            {{if .Video.Title}}<span class="title">{{.Video.Title}}</span>{{end}}
        </div>
        {{end}}
    </div>
    <script nonce="{{.Nonce}}">
    (function() {
        var track = document.getElementById("track");
        var mount = track.dataset.mount;
        var slots = Array.prototype.slice.call(track.querySelectorAll(".slot"));
        function el(i) { return slots[i] && slots[i].querySelector("video"); }
        function apply(cmd) {
            var v = el(cmd.slot);
            if (!v) return;
            switch (cmd.op) {
            case "seek": v.currentTime = cmd.seconds || 0; break;
            case "mute": v.muted = true; break;
            case "unmute": v.muted = false; break;
            case "play": var p = v.play(); if (p) p.catch(function() {}); break;
            case "pause": v.pause(); break;
            case "set-source": v.src = cmd.source; break;
            case "load": v.load(); break;
            }
        }
        function render(view) {
            view.slots.forEach(function(s) {
                var node = slots[s.slot];
                node.classList.toggle("active", s.isActive);
                node.querySelector(".mute-btn").textContent = s.isMuted ? "🔇" : "🔊";
            });
        }
        function send(slot, intent) {
            fetch("/api/mounts/" + mount + "/slots/" + slot + "/" + intent, { method: "POST" })
                .then(function(r) { return r.ok ? r.json() : null; })
                .then(function(view) { if (view) render(view); })
                .catch(function() {});
        }
        slots.forEach(function(node, i) {
            node.querySelector(".mute-btn").addEventListener("click", function(e) { e.stopPropagation(); send(i, "mute"); });
            node.addEventListener("click", function() { send(i, "select"); });
        });
        var proto = location.protocol === "https:" ? "wss://" : "ws://";
        var ws = new WebSocket(proto + location.host + "/api/mounts/" + mount + "/ws");
        ws.onmessage = function(e) { if (e.data !== "pong") apply(JSON.parse(e.data)); };
        ws.onopen = function() { setInterval(function() { ws.send("ping"); }, 30000); };
        window.addEventListener("pagehide", function() { fetch("/api/mounts/" + mount, { method: "DELETE", keepalive: true }); });
    })();
    </script>
</body>
</html>`))

type showcasePageData struct {
	Carousel string
	MountID  string
	Slots    []playback.SlotView
	Nonce    string
}

// ShowcasePage mounts a fresh carousel and renders its slots in their initial,
// all-muted state.
func (h *Handler) ShowcasePage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if msg := validate.CarouselName(name); msg != "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	m, _, err := h.mountCarousel(r.Context(), name)
	if err != nil {
		if isNotFound(err) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		slog.Error("carousel: showcase page", "carousel", name, "error", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	data := showcasePageData{
		Carousel: name,
		MountID:  m.ID,
		Slots:    m.Coordinator.Views(),
		Nonce:    httputil.NonceFromContext(r.Context()),
	}
	if err := showcasePageTemplate.Execute(w, data); err != nil {
		slog.Error("carousel: render showcase page", "error", err)
	}
}
