package discord

import (
	"albionbot/internal/config"
	"albionbot/internal/ports/input"
	"albionbot/internal/ports/output"
)

// Handler handles Discord interactions using use cases.
type Handler struct {
	raidUseCase     input.RaidUseCase
	signupUseCase   input.SignupUseCase
	templateUseCase input.TemplateUseCase
	translator      output.T
	config          *config.Config
}

// NewHandler creates a Handler.
func NewHandler(
	raidUseCase input.RaidUseCase,
	signupUseCase input.SignupUseCase,
	templateUseCase input.TemplateUseCase,
	translator output.T,
	cfg *config.Config,
) *Handler {
	return &Handler{
		raidUseCase:     raidUseCase,
		signupUseCase:   signupUseCase,
		templateUseCase: templateUseCase,
		translator:      translator,
		config:          cfg,
	}
}
