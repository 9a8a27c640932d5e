package constants

const (
	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP headers
	HeaderAuthorization    = "Authorization"
	HeaderXRequestID       = "X-Request-ID"
	HeaderServiceToken     = "X-Service-Token"
	HeaderWebhookSignature = "X-Razorpay-Signature"
	HeaderWebhookEventID   = "X-Razorpay-Event-Id"

	// Context keys
	ContextKeyUserID    = "user_id"
	ContextKeyTenantID  = "tenant_id"
	ContextKeyRole      = "user_role"
	ContextKeyRequestID = "request_id"

	// Roles
	RoleOwner         = "owner"
	RoleAdmin         = "admin"
	RoleMember        = "member"
	RolePlatformAdmin = "platform_admin"

	// Database table names
	TablePlans         = "plans"
	TableSubscriptions = "subscriptions"
	TablePayments      = "payments"
	TableInvoices      = "invoices"
	TableWebhookEvents = "webhook_events"
	TableAuditLogs     = "audit_logs"
	TableEmployees     = "employees"
)
