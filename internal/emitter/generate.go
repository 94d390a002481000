package emitter

import (
	"log/slog"

	"github.com/mark3labs/swagger2hooks/internal/plan"
	"github.com/mark3labs/swagger2hooks/internal/schema"
)

// Generate runs the four generators for one tag. They read the same plans
// and never see each other's output.
func Generate(names plan.TagNames, plans []plan.OperationPlan, reg *schema.Registry, needed []string, logger *slog.Logger) (*Sections, error) {
	ifaces, err := Interfaces(names, plans, reg, needed, logger)
	if err != nil {
		return nil, err
	}
	return &Sections{
		Endpoints:    Endpoints(names, plans),
		Interfaces:   ifaces,
		Service:      Service(names, plans),
		Presentation: Presentation(names, plans),
	}, nil
}
