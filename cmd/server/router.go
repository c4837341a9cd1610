package main

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lostfound-api/internal/api"
	apiMiddleware "github.com/phrazzld/lostfound-api/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	itemHandler := api.NewItemHandler(
		app.listingService,
		app.itemService,
		app.images,
		app.config.Storage.MaxImages,
		app.logger,
	)
	categoryHandler := api.NewCategoryHandler(app.categoryService, app.logger)
	authHandler := api.NewAuthHandler(app.accountService, app.logger)
	profileHandler := api.NewProfileHandler(app.profileService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sendcode", authHandler.SendCode)
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/forgotpassword/sendcode", authHandler.ForgotPasswordSendCode)
			r.Post("/forgotpassword/verifycode", authHandler.ForgotPasswordVerifyCode)
			r.Put("/forgotpassword/changepassword", authHandler.ForgotPasswordChangePassword)
		})

		r.Get("/categories", categoryHandler.List)

		r.Route("/items/{kind}", func(r chi.Router) {
			r.Get("/", itemHandler.Search)
			r.Get("/{id}", itemHandler.GetByID)
			r.Put("/", itemHandler.MissingUpdateID)
			r.Delete("/", itemHandler.MissingDeleteID)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/", itemHandler.Create)
				r.Put("/{id}", itemHandler.Update)
				r.Delete("/{id}", itemHandler.Delete)
			})
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/", profileHandler.Get)
			r.Put("/password", profileHandler.ChangePassword)
			r.Put("/telegram", profileHandler.SetTelegram)
			r.Put("/phone", profileHandler.SetPhone)
			r.Put("/credentials", profileHandler.SetCredentials)
		})
	})

	imgDir := filepath.Join(app.files.Dir(), "img")
	r.Handle("/img/*", http.StripPrefix("/img/", http.FileServer(http.Dir(imgDir))))

	r.Get("/health", api.HealthHandler(app.db, app.logger))

	return r
}
