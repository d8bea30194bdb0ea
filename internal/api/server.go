// Package api provides the HTTP API for running a campaign.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (game-master control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/engine"
	"github.com/sims1253/kataphraktus/internal/persistence"
)

// Server serves one campaign over HTTP. All engine access is serialized
// through mu since the engine mutates the campaign aggregate in place.
type Server struct {
	Campaign *campaign.Campaign
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	mu sync.Mutex
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	orderLimiter := NewRateLimiter(120, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/armies", s.handleArmies)
	mux.HandleFunc("/api/v1/commanders", s.handleCommanders)
	mux.HandleFunc("/api/v1/strongholds", s.handleStrongholds)
	mux.HandleFunc("/api/v1/sieges", s.handleSieges)
	mux.HandleFunc("/api/v1/messages", s.handleMessages)
	mux.HandleFunc("/api/v1/audit", s.handleAudit)

	// Order submission and lifecycle.
	mux.HandleFunc("/api/v1/orders", RateLimitMiddleware(orderLimiter, s.handleOrders))
	mux.HandleFunc("/api/v1/order/", s.handleOrderDetail)

	// Game-master endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/advance", s.adminOnly(s.handleAdvance))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are always
// allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	if s.AdminKey == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	return auth == "Bearer "+s.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.Campaign
	writeJSON(w, map[string]any{
		"campaign":    c.ID,
		"name":        c.Name,
		"day":         c.CurrentDay,
		"part":        c.Part,
		"season":      c.Season,
		"status":      c.Status,
		"weather":     c.TodaysWeather().Severity,
		"armies":      len(c.Armies),
		"commanders":  len(c.Commanders),
		"strongholds": len(c.Strongholds),
		"orders":      len(c.Orders),
	})
}

func (s *Server) handleArmies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]campaign.ArmyID, 0, len(s.Campaign.Armies))
	for id := range s.Campaign.Armies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*campaign.Army, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Campaign.Armies[id])
	}
	writeJSON(w, out)
}

func (s *Server) handleCommanders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]campaign.CommanderID, 0, len(s.Campaign.Commanders))
	for id := range s.Campaign.Commanders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*campaign.Commander, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Campaign.Commanders[id])
	}
	writeJSON(w, out)
}

func (s *Server) handleStrongholds(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]campaign.StrongholdID, 0, len(s.Campaign.Strongholds))
	for id := range s.Campaign.Strongholds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*campaign.Stronghold, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Campaign.Strongholds[id])
	}
	writeJSON(w, out)
}

func (s *Server) handleSieges(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]campaign.SiegeID, 0, len(s.Campaign.Sieges))
	for id := range s.Campaign.Sieges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*campaign.Siege, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Campaign.Sieges[id])
	}
	writeJSON(w, out)
}

// handleMessages lists messages, optionally filtered to a recipient. Only
// delivered messages expose their content.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recipient campaign.CommanderID
	if q := r.URL.Query().Get("recipient"); q != "" {
		n, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			http.Error(w, "bad recipient id", http.StatusBadRequest)
			return
		}
		recipient = campaign.CommanderID(n)
	}

	ids := make([]campaign.MessageID, 0, len(s.Campaign.Messages))
	for id := range s.Campaign.Messages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		m := s.Campaign.Messages[id]
		if recipient != 0 && m.Recipient != recipient {
			continue
		}
		entry := map[string]any{
			"id":        m.ID,
			"sender":    m.Sender,
			"recipient": m.Recipient,
			"sent_day":  m.SentDay,
			"status":    m.Status,
		}
		if m.Status == campaign.MessageDelivered {
			entry["content"] = m.Content
			entry["delivery_day"] = m.DeliveryDay
		}
		out = append(out, entry)
	}
	writeJSON(w, out)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	sinceDay := 0
	if q := r.URL.Query().Get("since_day"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			http.Error(w, "bad since_day", http.StatusBadRequest)
			return
		}
		sinceDay = n
	}
	s.mu.Lock()
	entries := s.Eng.AuditLog(sinceDay)
	s.mu.Unlock()
	writeJSON(w, entries)
}

// submitOrderRequest is the wire form of an order submission.
type submitOrderRequest struct {
	Commander   campaign.CommanderID `json:"commander"`
	Army        campaign.ArmyID      `json:"army,omitempty"`
	Type        campaign.OrderType   `json:"type"`
	Params      json.RawMessage      `json:"params"`
	ExecuteDay  *int                 `json:"execute_day,omitempty"`
	ExecutePart campaign.DayPart     `json:"execute_part,omitempty"`
	Priority    int                  `json:"priority,omitempty"`
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listOrders(w, r)
	case http.MethodPost:
		s.submitOrder(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := campaign.OrderStatus(r.URL.Query().Get("status"))
	out := make([]*campaign.Order, 0, len(s.Campaign.Orders))
	for _, o := range s.Campaign.Orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	writeJSON(w, out)
}

func (s *Server) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	wireOrder, err := json.Marshal(map[string]any{
		"type":   req.Type,
		"params": req.Params,
	})
	if err != nil {
		http.Error(w, "bad order", http.StatusBadRequest)
		return
	}
	var o campaign.Order
	if err := json.Unmarshal(wireOrder, &o); err != nil {
		http.Error(w, fmt.Sprintf("bad params: %v", err), http.StatusBadRequest)
		return
	}
	o.Commander = req.Commander
	o.Army = req.Army
	o.ExecuteDay = -1
	if req.ExecuteDay != nil {
		o.ExecuteDay = *req.ExecuteDay
	}
	o.ExecutePart = req.ExecutePart
	o.Priority = req.Priority

	s.mu.Lock()
	id, err := s.Eng.SubmitOrder(s.Campaign, &o)
	s.mu.Unlock()
	if err != nil {
		writeOrderError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{"id": id, "status": o.Status})
}

// handleOrderDetail serves GET /api/v1/order/{id} and POST
// /api/v1/order/{id}/cancel.
func (s *Server) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/order/")
	idStr, action, _ := strings.Cut(rest, "/")
	id, err := campaign.ParseOrderID(idStr)
	if err != nil {
		http.Error(w, "bad order id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && action == "":
		o, ok := s.Campaign.Orders[id]
		if !ok {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		writeJSON(w, o)
	case r.Method == http.MethodPost && action == "cancel":
		o, err := s.Eng.CancelOrder(s.Campaign, id)
		if err != nil {
			writeOrderError(w, err)
			return
		}
		writeJSON(w, o)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	days := 1
	if q := r.URL.Query().Get("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			http.Error(w, "bad days", http.StatusBadRequest)
			return
		}
		days = n
	}

	s.mu.Lock()
	snap, err := s.Eng.Advance(s.Campaign, days)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}
	s.mu.Lock()
	err := s.DB.SaveSnapshot(s.Campaign)
	if err == nil {
		err = s.DB.AppendAudit(s.Campaign.ID, s.Eng.AuditLog(0))
	}
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true})
}

// writeOrderError maps the engine's error taxonomy onto HTTP status codes.
func writeOrderError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch err.(type) {
	case *campaign.NotFoundError:
		status = http.StatusNotFound
	case *campaign.AuthorizationError:
		status = http.StatusForbidden
	case *campaign.ConflictError, *campaign.InvalidStateError:
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}
