package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/procwatch/procurement-cli/internal/model"
	"github.com/procwatch/procurement-cli/internal/store"
)

// newRouter builds the read API router over the given store.
func newRouter(st store.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/categories", handleCategories(st))
	r.Get("/api/articles", handleArticles(st))

	return r
}

func handleCategories(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := st.ListCategories(r.Context())
		if err != nil {
			zap.L().Error("list categories failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "a database error occurred"})
			return
		}
		if cats == nil {
			cats = []model.Category{}
		}
		writeJSON(w, http.StatusOK, cats)
	}
}

// articleSearchResponse is the paginated envelope of /api/articles.
type articleSearchResponse struct {
	Data          []model.Article `json:"data"`
	Page          int             `json:"page"`
	PerPage       int             `json:"per_page"`
	TotalArticles int             `json:"total_articles"`
	TotalPages    int             `json:"total_pages"`
}

func handleArticles(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseArticleFilter(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		arts, total, err := st.SearchArticles(r.Context(), *filter)
		if err != nil {
			zap.L().Error("search articles failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "a database error occurred"})
			return
		}
		if arts == nil {
			arts = []model.Article{}
		}

		totalPages := (total + filter.PerPage - 1) / filter.PerPage
		if totalPages < 1 {
			totalPages = 1
		}
		writeJSON(w, http.StatusOK, articleSearchResponse{
			Data:          arts,
			Page:          filter.Page,
			PerPage:       filter.PerPage,
			TotalArticles: total,
			TotalPages:    totalPages,
		})
	}
}

// parseArticleFilter maps query parameters onto a store.ArticleFilter.
// Pagination bounds are normalized here so the response envelope reports
// the effective values.
func parseArticleFilter(r *http.Request) (*store.ArticleFilter, error) {
	q := r.URL.Query()
	f := store.ArticleFilter{
		Title:             q.Get("title"),
		ProjectName:       q.Get("project_name"),
		PurchaseName:      q.Get("purchase_name"),
		DistrictName:      q.Get("district_name"),
		SupplierName:      q.Get("supplier_name"),
		ProcurementMethod: q.Get("procurement_method"),
		PublishDateStart:  q.Get("publish_date_start"),
		PublishDateEnd:    q.Get("publish_date_end"),
		BidOpeningStart:   q.Get("bid_opening_time_start"),
		BidOpeningEnd:     q.Get("bid_opening_time_end"),
	}

	for _, date := range []string{f.PublishDateStart, f.PublishDateEnd, f.BidOpeningStart, f.BidOpeningEnd} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}
	}

	var err error
	if f.CategoryID, err = intParam(q.Get("category_id")); err != nil {
		return nil, err
	}
	if f.BudgetMin, err = floatParam(q.Get("budget_price_min")); err != nil {
		return nil, err
	}
	if f.BudgetMax, err = floatParam(q.Get("budget_price_max")); err != nil {
		return nil, err
	}
	if f.ContractMin, err = floatParam(q.Get("total_contract_amount_min")); err != nil {
		return nil, err
	}
	if f.ContractMax, err = floatParam(q.Get("total_contract_amount_max")); err != nil {
		return nil, err
	}

	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	f.Normalize()

	return &f, nil
}

func intParam(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func floatParam(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
