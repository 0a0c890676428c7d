// Package routes assembles the HTTP surface.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenbasket/greenbasket-backend/api/controllers"
	"github.com/greenbasket/greenbasket-backend/api/middleware"
	"github.com/greenbasket/greenbasket-backend/pkg/auth"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/metrics"
)

// Deps carries everything the router wires together.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Tokens  *auth.TokenManager
	Metrics *metrics.Registry

	Health    *controllers.HealthController
	Auth      *controllers.AuthController
	Products  *controllers.ProductsController
	Banners   *controllers.BannersController
	Cart      *controllers.CartController
	Checkout  *controllers.CheckoutController
	Orders    *controllers.OrdersController
	Offers    *controllers.OffersController
	AdminUser *controllers.AdminUsersController
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	log := d.Logger
	r.Use(middleware.RequestID(log))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.CORS(d.Config.App.CORSOrigins))
	r.Use(middleware.Logging(log, d.Metrics))

	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront.
		r.Post("/auth/register", d.Auth.Register)
		r.Post("/auth/login", d.Auth.Login)

		r.Get("/products", d.Products.List)
		r.Get("/products/{productID}", d.Products.Get)
		r.Get("/categories", d.Products.ListCategories)
		r.Get("/brands", d.Products.ListBrands)
		r.Get("/banners", d.Banners.List)

		// Cart rides on the session cookie, no login needed.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(d.Config.Cart.TTL, d.Config.App.IsProd(), log))

			r.Get("/cart", d.Cart.Get)
			r.Post("/cart/items", d.Cart.AddItem)
			r.Put("/cart/items", d.Cart.SetQuantity)
			r.Delete("/cart/items/{productID}", d.Cart.RemoveItem)
			r.Post("/cart/coupon", d.Cart.ApplyCoupon)
			r.Delete("/cart/coupon", d.Cart.RemoveCoupon)
			r.Delete("/cart", d.Cart.Clear)

			// Checkout needs both the cart session and a login.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(d.Tokens, log))
				r.Post("/checkout", d.Checkout.Begin)
				r.Post("/checkout/confirm", d.Checkout.Confirm)
				r.Get("/checkout/success", d.Checkout.Success)
				r.Get("/checkout/cancel", d.Checkout.Cancel)
			})
		})

		// Authenticated customer surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(d.Tokens, log))

			r.Get("/me", d.Auth.Me)
			r.Put("/me", d.Auth.UpdateMe)

			r.Get("/orders", d.Orders.ListMine)
			r.Get("/orders/{orderID}", d.Orders.Get)
			r.Post("/orders/{orderID}/cancel", d.Orders.Cancel)
		})

		// Back office.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authenticate(d.Tokens, log))
			r.Use(middleware.RequireRole(log, enums.UserRoleAdmin))

			r.Post("/products", d.Products.Create)
			r.Put("/products/{productID}", d.Products.Update)
			r.Delete("/products/{productID}", d.Products.Delete)
			r.Post("/categories", d.Products.CreateCategory)
			r.Post("/brands", d.Products.CreateBrand)

			r.Get("/banners", d.Banners.ListAll)
			r.Post("/banners", d.Banners.Create)
			r.Put("/banners/{bannerID}", d.Banners.Update)
			r.Delete("/banners/{bannerID}", d.Banners.Delete)

			r.Get("/offers", d.Offers.List)
			r.Post("/offers", d.Offers.Create)
			r.Get("/offers/{offerID}", d.Offers.Get)
			r.Put("/offers/{offerID}", d.Offers.Update)
			r.Delete("/offers/{offerID}", d.Offers.Delete)

			r.Get("/orders", d.Orders.ListAll)
			r.Put("/orders/{orderID}/status", d.Orders.UpdateStatus)

			r.Get("/customers", d.AdminUser.List)
		})
	})

	return r
}
