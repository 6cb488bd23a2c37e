// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
	"github.com/finyara/leadflow/internal/lead"
)

type LeadStats interface {
	StatusCounts(ctx context.Context) (map[lead.Status]int, error)
}

type UserStats interface {
	RoleCounts(ctx context.Context) (map[access.Role]int, error)
}

type Handler struct {
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	dbPing     func(ctx context.Context) error
	redisPing  func(ctx context.Context) error
	leads      LeadStats
	users      UserStats
}

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
	Leads      LeadStats
	Users      UserStats
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		dbPing:     cfg.DBPing,
		redisPing:  cfg.RedisPing,
		leads:      cfg.Leads,
		users:      cfg.Users,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.Overview)
		r.Get("/stats/leads", h.LeadCounts)
		r.Get("/stats/system", h.System)
	})
}

// Overview combines business counters with infrastructure health.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leads, err := h.leadCounts(ctx)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	users, err := h.users.RoleCounts(ctx)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, OverviewResponse{
		Leads:  leads,
		Users:  users,
		System: h.system(ctx),
	})
}

func (h *Handler) LeadCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.leadCounts(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, counts)
}

func (h *Handler) System(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.system(r.Context()))
}

func (h *Handler) leadCounts(ctx context.Context) (LeadCountsResponse, error) {
	byStatus, err := h.leads.StatusCounts(ctx)
	if err != nil {
		return LeadCountsResponse{}, err
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	return LeadCountsResponse{Total: total, ByStatus: byStatus}, nil
}

func (h *Handler) system(ctx context.Context) SystemResponse {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := SystemResponse{
		Database: ComponentStatus{Healthy: pingOK(ctx, h.dbPing)},
		Redis:    ComponentStatus{Healthy: pingOK(ctx, h.redisPing)},
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     mem.Alloc,
			NumGC:        mem.NumGC,
		},
	}

	if h.dbStats != nil {
		s := h.dbStats()
		resp.Database.OpenConnections = s.OpenConnections
		resp.Database.InUse = s.InUse
	}
	if h.redisStats != nil {
		s := h.redisStats()
		resp.Redis.OpenConnections = int(s.TotalConns)
		resp.Redis.InUse = int(s.TotalConns - s.IdleConns)
	}

	return resp
}

func pingOK(ctx context.Context, ping func(context.Context) error) bool {
	return ping != nil && ping(ctx) == nil
}

type OverviewResponse struct {
	Leads  LeadCountsResponse  `json:"leads"`
	Users  map[access.Role]int `json:"users"`
	System SystemResponse      `json:"system"`
}

type LeadCountsResponse struct {
	Total    int                 `json:"total"`
	ByStatus map[lead.Status]int `json:"byStatus"`
}

type SystemResponse struct {
	Database ComponentStatus `json:"database"`
	Redis    ComponentStatus `json:"redis"`
	Runtime  RuntimeStats    `json:"runtime"`
}

type ComponentStatus struct {
	Healthy         bool `json:"healthy"`
	OpenConnections int  `json:"openConnections"`
	InUse           int  `json:"inUse"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	MemAlloc     uint64 `json:"memAllocBytes"`
	NumGC        uint32 `json:"numGC"`
}
