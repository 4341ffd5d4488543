package dashboard

import (
	"github.com/nerrad567/pico-bridge/internal/session"
	"github.com/nerrad567/pico-bridge/internal/ui"
)

// Static page text.
const (
	PublishNotice   = "Publishing occurs whenever the slider value is changed."
	SubscribeNotice = "Subscribing happens whenever there is a new message available."
	RadioLabel      = "System State (does nothing)"
	RadioHelp       = "This could also be used to push a message to the Pico"
)

// Node IDs in the page tree.
const (
	nodePage      = "page"
	nodeTitle     = "title"
	nodePublish   = "publish-notice"
	nodeSubscribe = "subscribe-notice"
	nodeColumns   = "columns"
	nodeColumn1   = "col1"
	nodeColumn2   = "col2"
	nodeRadio     = "system-state"
	nodeSlider    = "slider"
	nodeStatus    = "print-status"
)

// Region IDs for the two live display slots.
const (
	regionChanging = "placeholder1"
	regionMessage  = "placeholder2"
)

// initState applies every state default. Existing values are kept.
func (rt *Runtime) initState() {
	st := rt.sess.State
	cfg := rt.app.cfg.UI

	st.SetDefault(session.KeyPicoMsg, session.DefaultPicoMsg)
	st.SetDefault(session.KeyPlaceholder1, nil)
	st.SetDefault(session.KeyPlaceholder2, nil)
	st.SetDefault(session.KeyPrintStatus, session.DefaultPrintStatus)
	st.SetDefault(session.KeySlider, cfg.Slider.Default)
	if len(cfg.RadioOptions) > 0 {
		st.SetDefault(session.KeySystemState, cfg.RadioOptions[0])
	}
}

// buildPage builds the widget tree and binds the display regions into
// session state.
func (rt *Runtime) buildPage() *ui.Node {
	st := rt.sess.State
	cfg := rt.app.cfg.UI

	changing := rt.regions.Bind(regionChanging)
	message := rt.regions.Bind(regionMessage)
	st.Set(session.KeyPlaceholder1, changing.ID())
	st.Set(session.KeyPlaceholder2, message.ID())

	slider, err := st.Int(session.KeySlider)
	if err != nil {
		slider = cfg.Slider.Default
	}
	selected, _ := st.String(session.KeySystemState)
	status, _ := st.String(session.KeyPrintStatus)

	return ui.Page(nodePage,
		ui.Title(nodeTitle, cfg.Title),
		ui.Banner(nodePublish, ui.LevelError, PublishNotice),
		ui.Banner(nodeSubscribe, ui.LevelWarning, SubscribeNotice),
		ui.Columns(nodeColumns,
			ui.Column(nodeColumn1,
				ui.Radio(nodeRadio, session.KeySystemState, RadioLabel, cfg.RadioOptions, selected).
					Prop("help", RadioHelp),
				ui.RegionNode(changing),
				ui.RegionNode(message),
			),
			ui.Column(nodeColumn2,
				ui.Slider(nodeSlider, session.KeySlider, cfg.Slider.Label, cfg.Slider.Min, cfg.Slider.Max, slider),
				ui.Paragraph(nodeStatus, status),
			),
		),
	).Prop("session", rt.sess.ID)
}
