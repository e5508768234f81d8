package lumen

// PlatformWindowModule ensures a single shared GLFW window (WindowState) is created
// and made available as a resource for any renderer or input module.
// Install is idempotent: if a WindowState resource already exists, it is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

// NewPlatformWindow creates a module that provides a shared WindowState resource.
// If Width/Height are zero, sensible defaults are used.
func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 1080
	}
	if title == "" {
		title = "Lumen"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	ensureWindowResource(app, m.Width, m.Height, m.Title)
	app.UseSystem(System(windowCloseSystem).InStage(Finale))
}

func (m PlatformWindowModule) OnEnable(app *App)  {}
func (m PlatformWindowModule) OnDisable(app *App) {}

func (m PlatformWindowModule) OnShutdown(app *App) {
	if ws := Resource[WindowState](app); ws != nil {
		ws.Destroy()
	}
}

func windowCloseSystem(s *WindowState, cmd *Commands) {
	if s.ShouldClose() {
		cmd.App().Logger().Infof("window closed")
		cmd.Quit()
	}
}
