package handler

import (
	"github.com/centimeapp/centime-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler for route registration
type Handlers struct {
	Auth             *AuthHandler
	Invoice          *InvoiceHandler
	Expense          *ExpenseHandler
	Vat              *VatHandler
	VatPayment       *VatPaymentHandler
	Urssaf           *UrssafHandler
	UrssafPayment    *UrssafPaymentHandler
	IncomeTax        *IncomeTaxHandler
	IncomeTaxPayment *IncomeTaxPaymentHandler
	Settings         *SettingsHandler
	Bracket          *BracketHandler
	Balance          *BalanceHandler
	Dashboard        *DashboardHandler
	Receipt          *ReceiptHandler
	WebSocket        *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	// API version 1
	api := e.Group("/api/v1")

	authenticated := func(g *echo.Group) *echo.Group {
		g.Use(authMiddleware.Authenticate())
		g.Use(middleware.RateLimitMiddleware(rateLimiter))
		return g
	}

	// Auth routes (protected)
	auth := authenticated(api.Group("/auth"))
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)

	// Invoice routes (protected)
	invoices := authenticated(api.Group("/invoices"))
	invoices.POST("", h.Invoice.CreateInvoice)
	invoices.GET("", h.Invoice.GetInvoices)
	invoices.GET("/:id", h.Invoice.GetInvoice)
	invoices.PUT("/:id", h.Invoice.UpdateInvoice)
	invoices.DELETE("/:id", h.Invoice.DeleteInvoice)
	invoices.PATCH("/:id/toggle-canceled", h.Invoice.ToggleCanceled)
	invoices.PATCH("/:id/mark-paid", h.Invoice.MarkPaid)

	// Expense routes (protected)
	expenses := authenticated(api.Group("/expenses"))
	expenses.POST("", h.Expense.CreateExpense)
	expenses.GET("", h.Expense.GetExpenses)
	expenses.GET("/:id", h.Expense.GetExpense)
	expenses.PUT("/:id", h.Expense.UpdateExpense)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)

	// VAT routes: calculations plus declared payments (protected)
	vat := authenticated(api.Group("/vat"))
	vat.GET("/declaration/:year/:month", h.Vat.GetDeclaration)
	vat.GET("/summary", h.Vat.GetPeriodSummary)
	vat.POST("/payments", h.VatPayment.CreatePayment)
	vat.GET("/payments", h.VatPayment.GetPayments)
	vat.PUT("/payments/:id", h.VatPayment.UpdatePayment)
	vat.DELETE("/payments/:id", h.VatPayment.DeletePayment)
	vat.PATCH("/payments/:id/mark-paid", h.VatPayment.MarkPaid)

	// Urssaf routes (protected)
	urssaf := authenticated(api.Group("/urssaf"))
	urssaf.GET("/quarters/:year/:trimester", h.Urssaf.GetQuarter)
	urssaf.GET("/years/:year", h.Urssaf.GetYearSummary)
	urssaf.POST("/payments", h.UrssafPayment.CreatePayment)
	urssaf.GET("/payments", h.UrssafPayment.GetPayments)
	urssaf.PUT("/payments/:id", h.UrssafPayment.UpdatePayment)
	urssaf.DELETE("/payments/:id", h.UrssafPayment.DeletePayment)

	// Income tax routes (protected)
	incomeTax := authenticated(api.Group("/income-tax"))
	incomeTax.GET("/estimate/:year", h.IncomeTax.GetEstimate)
	incomeTax.POST("/payments", h.IncomeTaxPayment.CreatePayment)
	incomeTax.GET("/payments", h.IncomeTaxPayment.GetPayments)
	incomeTax.PUT("/payments/:id", h.IncomeTaxPayment.UpdatePayment)
	incomeTax.DELETE("/payments/:id", h.IncomeTaxPayment.DeletePayment)

	// Settings routes (protected)
	settings := authenticated(api.Group("/settings"))
	settings.GET("", h.Settings.GetSettings)
	settings.PUT("", h.Settings.UpdateSettings)
	settings.GET("/rates/:year", h.Settings.GetEffectiveRates)
	settings.PUT("/rates/:year", h.Settings.SetYearOverride)
	settings.DELETE("/rates/:year", h.Settings.DeleteYearOverride)

	// Tax bracket routes (protected)
	brackets := authenticated(api.Group("/brackets"))
	brackets.GET("/:year", h.Bracket.GetBrackets)
	brackets.PUT("/:year", h.Bracket.ReplaceBrackets)
	brackets.DELETE("/:year", h.Bracket.DeleteBrackets)

	// Account balance routes (protected)
	balance := authenticated(api.Group("/balance"))
	balance.GET("", h.Balance.GetBalance)
	balance.PUT("", h.Balance.SetBalance)

	// Dashboard routes (protected)
	dashboard := authenticated(api.Group("/dashboard"))
	dashboard.GET("/months/:year/:month", h.Dashboard.GetMonthSummary)
	dashboard.GET("/years/:year", h.Dashboard.GetYearSummary)
	dashboard.GET("/availability", h.Dashboard.GetAvailability)

	// Receipt routes (protected)
	receipts := authenticated(api.Group("/receipts"))
	receipts.POST("/:entity/:id", h.Receipt.Upload)
	receipts.GET("/:entity/:id", h.Receipt.GetURL)
	receipts.DELETE("/:entity/:id", h.Receipt.Delete)

	// WebSocket endpoint (token auth via query parameter)
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}
}
