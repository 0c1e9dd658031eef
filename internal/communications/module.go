package communications

import (
	apphttp "leadqualify_backend/internal/http"
	"leadqualify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the communication log and its admin route.
type Module struct {
	service *Service
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := NewService(NewRepository(pool), val)
	return &Module{service: svc, handler: NewHandler(svc)}
}

func (m *Module) Name() string {
	return "communications"
}

// Service returns the communication log for the notification module.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
