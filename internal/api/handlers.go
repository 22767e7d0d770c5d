package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"siteforge/realtime/internal/auth"
	"siteforge/realtime/internal/hub"
	"siteforge/realtime/internal/metrics"
	"siteforge/realtime/internal/models"
)

type Handlers struct {
	log         *zap.Logger
	auth        *auth.Authenticator
	hub         *hub.Hub
	upgrader    websocket.Upgrader
	authTimeout time.Duration
}

func NewHandlers(log *zap.Logger, authn *auth.Authenticator, h *hub.Hub, frontendOrigin string, authTimeout time.Duration) (*Handlers, error) {
	if h == nil {
		return nil, hub.ErrNotInitialized
	}
	return &Handlers{
		log:  log,
		auth: authn,
		hub:  h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// non-browser clients (tests, server-side tools) send no Origin
				return origin == "" || origin == frontendOrigin
			},
		},
		authTimeout: authTimeout,
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

/*** Realtime socket: presence, typing relay, directed notifications ***/

// SocketHandler drives one connection through its lifecycle: upgrade,
// authenticate within the handshake deadline, auto-join the private user
// room, then dispatch client events until the transport closes. Cleanup is
// deferred so it runs on every exit path.
func (h *Handlers) SocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// The first frame must carry the credential. The token travels in the
	// frame body rather than the query string so it stays out of access logs.
	_ = conn.SetReadDeadline(time.Now().Add(h.authTimeout))
	var init models.Frame
	if err := conn.ReadJSON(&init); err != nil || init.Event != models.EventAuth {
		metrics.AuthRejections.Inc()
		_ = conn.WriteJSON(errFrame("auth_required"))
		return
	}
	var req models.AuthRequest
	marshal(init.Data, &req)

	principal, err := h.auth.Authenticate(r.Context(), req.Token)
	if err != nil {
		metrics.AuthRejections.Inc()
		h.log.Warn("handshake rejected", zap.Error(err))
		_ = conn.WriteJSON(errFrame("unauthorized"))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	client := hub.NewClient(conn, principal)
	h.hub.Register(client)
	defer h.hub.Disconnect(client)

	client.Send(models.Frame{Event: models.EventAuthOK, Data: principal})

	// Event loop
	for {
		var frame models.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Event {
		case models.EventJoinProject:
			var p models.ProjectRequest
			marshal(frame.Data, &p)
			if p.ProjectID == "" {
				h.log.Warn("dropping malformed join:project", zap.String("connectionId", client.ID))
				continue
			}
			h.hub.JoinProject(client, p.ProjectID)

		case models.EventLeaveProject:
			var p models.ProjectRequest
			marshal(frame.Data, &p)
			if p.ProjectID == "" {
				h.log.Warn("dropping malformed leave:project", zap.String("connectionId", client.ID))
				continue
			}
			h.hub.LeaveProject(client, p.ProjectID)

		case models.EventTyping:
			var t models.TypingRequest
			marshal(frame.Data, &t)
			if t.ProjectID == "" {
				h.log.Warn("dropping malformed chat:typing", zap.String("connectionId", client.ID))
				continue
			}
			h.hub.Typing(client, t.ProjectID, t.IsTyping)

		default:
			client.Send(errFrame("unknown_event"))
		}
	}
}

// ProjectPresence returns who is currently in a project room, so the
// frontend can seed its presence sidebar before the socket catches up.
func (h *Handlers) ProjectPresence(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.FromRequest(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	projectID := chi.URLParam(r, "id")
	writeJSON(w, h.hub.ProjectMembers(projectID))
}

func marshal(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }

func errFrame(msg string) models.Frame { return models.Frame{Event: models.EventError, Data: msg} }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
