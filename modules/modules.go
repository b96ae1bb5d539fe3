package modules

import (
	"github.com/Sanchex-22/flow-console/modules/core"
	"github.com/Sanchex-22/flow-console/pkg/application"
)

func BuiltInModules() []application.Module {
	return []application.Module{
		core.NewModule(),
	}
}

func Load(app application.Application, mods ...application.Module) error {
	for _, module := range mods {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
