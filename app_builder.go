package pentagon

import (
	"reflect"
)

// Module installs resources and systems into an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: &App{
		resources:        make(map[reflect.Type]any),
		systems:          make(map[string]map[State]map[statePhase][]systemFn),
		systemsStateless: make(map[string][]systemFn),
		stateful:         false,
	}}
}

func (b *AppBuilder) UseStates(initialState State, finalState State) *AppBuilder {
	b.app.stateful = true
	b.app.initialState = initialState
	b.app.finalState = finalState

	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build lays out the stages and installs the modules in the order given.
func (b *AppBuilder) Build() *App {
	app := b.app
	app.build()

	app.UseModules(b.modules...)

	return app
}

func (app *App) UseModules(modules ...Module) *App {
	commands := &Commands{app: app}
	for _, module := range modules {
		module.Install(app, commands)
	}
	return app
}
