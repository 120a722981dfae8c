package model

// Provider identifies an external service whose API is wrapped.
type Provider string

const (
	ProviderGoogle         Provider = "google"
	ProviderTrello         Provider = "trello"
	ProviderServiceAccount Provider = "service_account"
)

// TaskStatus represents the completion state of a task-board item.
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusPending   TaskStatus = "Pending"
)

// FlowState represents the state of one OAuth exchange flow instance.
type FlowState string

const (
	FlowIdle                 FlowState = "idle"
	FlowAwaitingUserConsent  FlowState = "awaiting_user_consent"
	FlowAwaitingCodeExchange FlowState = "awaiting_code_exchange"
	FlowAuthenticated        FlowState = "authenticated"
	FlowFailed               FlowState = "failed"
)
