package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/delphienergy/sunshare/internal/modules/loadcurve"
	"github.com/delphienergy/sunshare/internal/modules/optimizer"
	"github.com/delphienergy/sunshare/internal/modules/portfolio"
	"github.com/delphienergy/sunshare/internal/modules/projects"
)

// setupLoadcurveRoutes configures consumption curve routes.
func (s *Server) setupLoadcurveRoutes(r chi.Router) {
	store := loadcurve.NewStore(s.cfg.ProfilesDir(), s.log)
	service := loadcurve.NewService(store, s.log)
	handler := loadcurve.NewHandler(service, s.log)

	r.Route("/loadcurve/{pod}", func(r chi.Router) {
		r.Get("/", handler.HandleGet)
		r.Get("/monthly", handler.HandleGetMonthly)
		r.Get("/daily", handler.HandleGetDaily)
		r.Get("/stats", handler.HandleGetStats)
	})
}

// setupProjectRoutes configures project catalog and energy mix routes.
func (s *Server) setupProjectRoutes(r chi.Router) {
	mixStore := projects.NewMixStore(s.cfg.MixDir(), s.log)
	handler := projects.NewHandler(s.catalog, mixStore, s.log)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", handler.HandleList)
		r.Get("/{id}/production/monthly", handler.HandleProductionMonthly)
		r.Get("/{id}/production/daily", handler.HandleProductionDaily)
	})
	r.Get("/mix/{type}", handler.HandleGetMix)
}

// setupOptimizerRoutes configures investment optimization routes.
func (s *Server) setupOptimizerRoutes(r chi.Router) {
	store := loadcurve.NewStore(s.cfg.ProfilesDir(), s.log)
	runs := optimizer.NewRunRepository(s.db.Conn(), s.log)
	service := optimizer.NewService(store, s.catalog, runs, s.events, s.cfg.Assumptions, s.log)
	handler := optimizer.NewHandler(service, runs, s.cfg, s.log)

	r.Route("/optimize", func(r chi.Router) {
		r.Post("/", handler.HandleOptimize)
		r.Get("/runs", handler.HandleListRuns)
	})
}

// setupPortfolioRoutes configures portfolio ledger and reporting routes.
func (s *Server) setupPortfolioRoutes(r chi.Router) {
	store := loadcurve.NewStore(s.cfg.ProfilesDir(), s.log)
	repo := portfolio.NewRepository(s.db, s.log)
	service := portfolio.NewService(repo, s.catalog, store, s.events, s.cfg, s.log)
	handler := portfolio.NewHandler(service, s.log)

	r.Route("/portfolio", func(r chi.Router) {
		r.Post("/users", handler.HandleCreateUser)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", handler.HandleGetPortfolio)
			r.Get("/production", handler.HandleGetProduction)
			r.Post("/transactions", handler.HandleCreateTransaction)
		})
	})
}
