package pentagon

import "testing"

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

type orderModule struct {
	name  string
	order *[]string
}

func (m orderModule) Install(app *App, commands *Commands) {
	*m.order = append(*m.order, m.name)
}

func TestAppBuilder_Stateless(t *testing.T) {
	builder := NewAppBuilder()
	app := builder.Build()

	if app.stateful != false {
		t.Errorf("Expected stateful to be false, got %v", app.stateful)
	}
	if app.initialState != 0 {
		t.Errorf("Expected initialState to be 0, got %v", app.initialState)
	}
	if app.finalState != 0 {
		t.Errorf("Expected finalState to be 0, got %v", app.finalState)
	}
	if len(app.stages) != len(defaultStages) {
		t.Errorf("Expected %d stages, got %d", len(defaultStages), len(app.stages))
	}
}

func TestAppBuilder_UseStates(t *testing.T) {
	builder := NewAppBuilder()
	builder.UseStates(StateRunning, StateExiting)

	app := builder.Build()

	if app.stateful != true {
		t.Errorf("Expected stateful to be true, got %v", app.stateful)
	}
	if app.initialState != StateRunning {
		t.Errorf("Expected initialState to be %v, got %v", StateRunning, app.initialState)
	}
	if app.finalState != StateExiting {
		t.Errorf("Expected finalState to be %v, got %v", StateExiting, app.finalState)
	}
	if _, ok := app.systems[Render.Name][StateExiting][enter]; !ok {
		t.Errorf("Expected enter phase for StateExiting in the Render stage")
	}
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	mockModule := &MockModule{}
	builder.UseModule(mockModule)

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
	if mockModule.installed {
		t.Errorf("Expected Install to wait for Build")
	}
}

func TestAppBuilder_Build_WithMultipleModules(t *testing.T) {
	var order []string
	module1 := &MockModule{}
	module2 := &MockModule{}

	builder := NewAppBuilder()
	builder.UseModule(module1, orderModule{name: "a", order: &order})
	builder.UseModule(module2, orderModule{name: "b", order: &order})

	builder.Build()

	if len(builder.modules) != 4 {
		t.Errorf("Expected 4 modules, got %v", len(builder.modules))
	}
	if !module1.installed {
		t.Errorf("Expected Install to be called on the module 1, but it was not")
	}
	if !module2.installed {
		t.Errorf("Expected Install to be called on the module 2, but it was not")
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("Expected modules installed in order [a b], got %v", order)
	}
}
