// Package server hosts the shared corrections service: reviewers' browsers
// and locsync runs read the correction document publicly, replace it with
// an authenticated PUT, or merge a delta with an authenticated PATCH.
// PUT is a full overwrite; last write wins.
package server

import (
	"crypto/subtle"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/redshield/locsync/internal/store"
	"github.com/redshield/locsync/pkg/ledger"
	"github.com/redshield/locsync/pkg/logging"
)

// TokenHeader authenticates mutating requests.
const TokenHeader = "X-Worker-Token"

// MaxPayloadBytes caps PUT bodies. The correction set is proportional to
// reviewer activity and stays far below this in practice.
const MaxPayloadBytes = 256 * 1024

// Config holds the service settings.
type Config struct {
	Addr string

	// Token guards writes. An empty token rejects all writes; the service
	// is then read-only.
	Token string

	// AllowedOrigins restricts CORS. Empty allows all origins.
	AllowedOrigins []string
}

// Server serves the correction document over HTTP.
type Server struct {
	config Config
	store  ledger.Store
	log    *zerolog.Logger
	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(log *zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// New creates a Server over a correction store.
func New(config Config, st ledger.Store, opts ...Option) *Server {
	s := &Server{
		config: config,
		store:  st,
		log:    logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Handlers log through the request context so embedded deployments can
	// swap the logger without reaching into the Server.
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), s.log))
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	if len(config.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = config.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods(http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodOptions)
	corsConfig.AddAllowHeaders("Content-Type", TokenHeader)
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/corrections", s.getCorrections)
	router.PUT("/corrections", s.putCorrections)
	router.PATCH("/corrections", s.patchCorrections)

	s.router = router
	return s
}

// Handler exposes the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.config.Addr).Msg("corrections service listening")
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) getCorrections(c *gin.Context) {
	corrections, updated, err := s.store.Load(c.Request.Context())
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("correction load failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	doc := store.Document{Data: corrections}
	if doc.Data == nil {
		doc.Data = []ledger.Correction{}
	}
	if !updated.IsZero() {
		doc.LastUpdated = &updated
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) putCorrections(c *gin.Context) {
	if !s.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + TokenHeader})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxPayloadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if len(body) > MaxPayloadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	doc, err := decodeDocument(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	if err := s.store.Save(c.Request.Context(), doc.Data); err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("correction save failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	logging.Ctx(c.Request.Context()).Info().Int("corrections", len(doc.Data)).Msg("correction document replaced")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// patchCorrections merges a keyed delta into the stored set. Entries
// upsert by the correction's own identifier and field; a null entry
// deletes the correction its key names.
func (s *Server) patchCorrections(c *gin.Context) {
	if !s.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + TokenHeader})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxPayloadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if len(body) > MaxPayloadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	delta, err := decodeDelta(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	current, _, err := s.store.Load(c.Request.Context())
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("correction load failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	next := mergeDelta(current, delta)
	if err := s.store.Save(c.Request.Context(), next); err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("correction save failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	logging.Ctx(c.Request.Context()).Info().Int("merged", len(delta)).Int("corrections", len(next)).Msg("correction delta merged")
	c.JSON(http.StatusOK, gin.H{"ok": true, "merged": len(delta)})
}

func (s *Server) authorized(c *gin.Context) bool {
	if s.config.Token == "" {
		return false
	}
	token := c.GetHeader(TokenHeader)
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.config.Token)) == 1
}
