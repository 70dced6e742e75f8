package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/room4-2/jurgo-ivr/config"
	"github.com/room4-2/jurgo-ivr/messages"
	"github.com/room4-2/jurgo-ivr/metrics"
)

const dtmfPath = "/webhooks/dtmf"

// Tracker reports how many conversations have a known order state
type Tracker interface {
	Count() int
}

// WebhookServer receives the telephony platform's answer, event and input webhooks
type WebhookServer struct {
	httpServer *http.Server
	dispatcher *Dispatcher
	tracker    Tracker
	config     *config.Config
	log        zerolog.Logger
}

func NewWebhookServer(cfg *config.Config, dispatcher *Dispatcher, tracker Tracker, log zerolog.Logger) *WebhookServer {
	s := &WebhookServer{
		dispatcher: dispatcher,
		tracker:    tracker,
		config:     cfg,
		log:        log.With().Str("component", "webhook_server").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /webhooks/answer", s.handleAnswer)
	mux.HandleFunc("POST /webhooks/event", s.handleEvent)
	mux.HandleFunc("POST "+dtmfPath, s.handleDTMF)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Event and input handlers wait on several platform API calls
		WriteTimeout: 3*cfg.VonageTimeout + 5*time.Second,
	}

	return s
}

// Start begins listening for connections
func (s *WebhookServer) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("webhook server starting")
	if s.config.PublicURL != "" {
		s.log.Info().Str("answer_url", s.config.PublicURL+"/webhooks/answer").Str("event_url", s.config.PublicURL+"/webhooks/event").Msg("configure these on the voice application")
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *WebhookServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down webhook server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routes, mainly for tests
func (s *WebhookServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// GetAddr returns the server's listen address (for logging in main)
func (s *WebhookServer) GetAddr() string {
	return s.httpServer.Addr
}

func (s *WebhookServer) handleAnswer(w http.ResponseWriter, r *http.Request) {
	req, err := messages.ParseAnswer(r.URL.Query())
	if err != nil {
		s.writeError(w, "answer", http.StatusBadRequest, err)
		return
	}

	s.log.Info().Str("from", req.From).Str("conversation_id", req.ConversationUUID).Msg("incoming call")
	s.writeNCCO(w, "answer", s.dispatcher.Answer(req))
}

func (s *WebhookServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	req, err := messages.DecodeEvent(r.Body)
	if err != nil {
		s.writeError(w, "event", http.StatusBadRequest, err)
		return
	}

	if req.Type != messages.EventTypeTransfer {
		s.log.Debug().Str("type", req.Type).Str("status", req.Status).Msg("ignoring event")
		s.writeEmpty(w, "event")
		return
	}

	log := s.log.With().Str("conversation_id", req.ConversationUUIDTo).Logger()
	log.Info().Msg("caller joined conversation")

	if err := s.dispatcher.Transfer(r.Context(), req.ConversationUUIDTo, s.dtmfURL(r)); err != nil {
		// The platform does not act on our response here, so failures only get logged
		log.Error().Err(err).Msg("failed to prompt caller")
	}
	s.writeEmpty(w, "event")
}

func (s *WebhookServer) handleDTMF(w http.ResponseWriter, r *http.Request) {
	req, err := messages.DecodeDTMF(r.Body)
	if err != nil {
		s.writeError(w, "dtmf", http.StatusBadRequest, err)
		return
	}

	ncco := s.dispatcher.Digits(r.Context(), req, s.dtmfURL(r))
	if ncco == nil {
		s.log.Debug().Str("conversation_id", req.ConversationUUID).Msg("input timed out")
		s.writeEmpty(w, "dtmf")
		return
	}
	s.writeNCCO(w, "dtmf", ncco)
}

func (s *WebhookServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"server":        "jurgo-ivr",
		"conversations": s.tracker.Count(),
	})
}

// dtmfURL is where input actions post digits. Behind a proxy, PUBLIC_URL
// should be set since the request may not carry the public host.
func (s *WebhookServer) dtmfURL(r *http.Request) string {
	if s.config.PublicURL != "" {
		return s.config.PublicURL + dtmfPath
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + dtmfPath
}

func (s *WebhookServer) writeNCCO(w http.ResponseWriter, endpoint string, ncco messages.NCCO) {
	metrics.WebhookRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(http.StatusOK)).Inc()
	s.writeJSON(w, http.StatusOK, ncco)
}

func (s *WebhookServer) writeEmpty(w http.ResponseWriter, endpoint string) {
	metrics.WebhookRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(http.StatusNoContent)).Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *WebhookServer) writeError(w http.ResponseWriter, endpoint string, status int, err error) {
	metrics.WebhookRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()

	ev := s.log.Warn()
	if !errors.Is(err, messages.ErrMalformedInput) {
		ev = s.log.Error()
	}
	ev.Err(err).Str("endpoint", endpoint).Msg("rejected webhook")

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *WebhookServer) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
