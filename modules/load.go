package modules

import (
	"slices"

	"github.com/iota-uz/org-console/modules/core"
	"github.com/iota-uz/org-console/modules/department"
	"github.com/iota-uz/org-console/modules/position"
	"github.com/iota-uz/org-console/modules/tenant"
	"github.com/iota-uz/org-console/pkg/application"
)

var (
	// EntityModules own the three backend-backed entity consoles.
	EntityModules = []application.Module{
		tenant.NewModule(),
		department.NewModule(),
		position.NewModule(),
	}

	NavLinks = slices.Concat(
		core.NavItems,
		tenant.NavItems,
		department.NavItems,
		position.NavItems,
	)
)

// BuiltInModules returns core followed by the entity modules.
func BuiltInModules(opts *core.ModuleOptions) []application.Module {
	return append([]application.Module{core.NewModule(opts)}, EntityModules...)
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
