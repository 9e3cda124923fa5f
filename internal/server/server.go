// Package server exposes the hub session over a small JSON API for the
// scheduler frontend.
package server

import (
	"context"
	"errors"
	"hubsync-backend/internal/components/assert"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/scrapers/hub"
	"hubsync-backend/internal/snapshot"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	report_request        = "request"
	report_persist        = "persist"
	report_scheduled_sync = "scheduled_sync"
)

const (
	msgLoggedIn    = "Logged in"
	msgLoginFailed = "Login failed - check credentials"
	msgNoSnapshot  = "No cached data. Run a sync first."
)

// Portal is the part of the session the API serves.
type Portal interface {
	Login(ctx context.Context) (bool, error)
	FullSync(ctx context.Context) (hub.SyncSnapshot, error)
	Registrations(ctx context.Context) (hub.Registrations, error)
	UpcomingEvents(ctx context.Context) (hub.EventListing, error)
	PersonalSnapshot(ctx context.Context) (hub.PersonalSnapshot, error)
	SearchEvents(ctx context.Context, term string) (hub.EventListing, error)
	MyGroups(ctx context.Context) (hub.GroupListing, error)
	Register(ctx context.Context, eventURL string) (hub.RegisterResult, error)
	SearchMembers(ctx context.Context, query, region string) ([]hub.MemberRecord, error)
}

type Server struct {
	portal    Portal
	store     snapshot.Store
	indexPath string
	tel       telemetry.API
	metrics   *metrics
	engine    *gin.Engine
}

func New(portal Portal, store snapshot.Store, indexPath string, tel telemetry.API) *Server {
	assert.NotNil(portal, "portal")
	assert.NotNil(tel, "telemetry")

	s := &Server{
		portal:    portal,
		store:     store,
		indexPath: indexPath,
		tel:       telemetry.NewScopedAPI("server", tel),
		metrics:   newMetrics(),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), allowAnyOrigin(), s.metrics.middleware())

	r.GET("/", s.frontend)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/hub")
	api.POST("/login", s.login)
	api.GET("/sync", s.sync)
	api.GET("/registrations", s.registrations)
	api.GET("/events", s.events)
	api.GET("/snapshot", s.snapshot)
	api.GET("/search-events", s.searchEvents)
	api.GET("/my-groups", s.myGroups)
	api.POST("/register", s.register)
	api.GET("/search-members", s.searchMembers)
	api.GET("/cached", s.cached)
	return r
}

// Handler returns the traced http handler for the API.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "hubsync")
}

// Registry exposes the metrics registry so callers can add collectors.
func (s *Server) Registry() *prometheus.Registry {
	return s.metrics.registry
}

func allowAnyOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	s.tel.ReportBroken(report_request, c.FullPath(), err)
	status := http.StatusInternalServerError
	if errors.Is(err, hub.ErrSession) {
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func (s *Server) frontend(c *gin.Context) {
	if s.indexPath == "" {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(s.indexPath)
}

func (s *Server) login(c *gin.Context) {
	ok, err := s.portal.Login(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	message := msgLoggedIn
	if !ok {
		message = msgLoginFailed
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "message": message})
}

// Sync runs a full sync and persists it, a failed sync leaves the previous
// snapshot in place.
func (s *Server) Sync(ctx context.Context) (hub.SyncSnapshot, error) {
	snap, err := s.portal.FullSync(ctx)
	if err != nil {
		return hub.SyncSnapshot{}, err
	}
	err = s.store.Save(snap)
	if err != nil {
		s.tel.ReportBroken(report_persist, s.store.Path(), err)
		return hub.SyncSnapshot{}, err
	}
	s.metrics.observeSync(snap)
	return snap, nil
}

// Schedule registers a background sync on spec, runs are bounded by
// timeout.
func (s *Server) Schedule(ctx context.Context, cronner chrono.CronAPI, spec string, timeout time.Duration) error {
	return cronner.Cron(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		_, err := s.Sync(runCtx)
		if err != nil {
			s.metrics.scheduledSyncs.WithLabelValues("failed").Inc()
			s.tel.ReportBroken(report_scheduled_sync, spec, err)
			return
		}
		s.metrics.scheduledSyncs.WithLabelValues("ok").Inc()
	})
}

func (s *Server) sync(c *gin.Context) {
	snap, err := s.Sync(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) registrations(c *gin.Context) {
	regs, err := s.portal.Registrations(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.records.WithLabelValues("registrations").Set(float64(len(regs.Events)))
	c.JSON(http.StatusOK, regs)
}

func (s *Server) events(c *gin.Context) {
	listing, err := s.portal.UpcomingEvents(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.records.WithLabelValues("upcoming_events").Set(float64(len(listing.Events)))
	c.JSON(http.StatusOK, listing)
}

func (s *Server) snapshot(c *gin.Context) {
	snap, err := s.portal.PersonalSnapshot(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) searchEvents(c *gin.Context) {
	listing, err := s.portal.SearchEvents(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) myGroups(c *gin.Context) {
	listing, err := s.portal.MyGroups(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.records.WithLabelValues("groups").Set(float64(len(listing.Groups)))
	c.JSON(http.StatusOK, listing)
}

type registerRequest struct {
	EventURL string `json:"event_url" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	result, err := s.portal.Register(c.Request.Context(), req.EventURL)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.registrations.WithLabelValues(outcome(result.Success)).Inc()
	c.JSON(http.StatusOK, result)
}

func outcome(success bool) string {
	if success {
		return "confirmed"
	}
	return "unconfirmed"
}

func (s *Server) searchMembers(c *gin.Context) {
	members, err := s.portal.SearchMembers(c.Request.Context(), c.Query("q"), c.Query("region"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.records.WithLabelValues("members").Set(float64(len(members)))
	if members == nil {
		members = []hub.MemberRecord{}
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) cached(c *gin.Context) {
	raw, err := s.store.Raw()
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		c.JSON(http.StatusOK, gin.H{"error": msgNoSnapshot})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
