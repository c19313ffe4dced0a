package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/calvinmclean/novahead"
	"github.com/calvinmclean/novahead/controller"
	"github.com/calvinmclean/novahead/firmware/loop"
)

const maxLogLines = 200

func createSlider(ch novahead.Channel, initial int, onSet func(float64)) (*fyne.Container, *widget.Slider) {
	valueLabel := widget.NewLabel(fmt.Sprintf("%d", initial))

	slider := widget.NewSlider(novahead.MinAngle, novahead.MaxAngle)
	slider.Step = 1
	slider.SetValue(float64(initial))
	slider.OnChanged = func(value float64) {
		valueLabel.SetText(fmt.Sprintf("%.0f", value))
	}
	slider.OnChangeEnded = onSet

	return container.NewVBox(
		container.NewGridWithColumns(2,
			widget.NewLabel(ch.String()),
			valueLabel,
		),
		slider,
	), slider
}

// HeadUI is a manual control panel. It also implements io.Writer so controller output
// shows up in its log
type HeadUI struct {
	app fyne.App

	mu      sync.Mutex
	logText []string
	logView *widget.Label
}

func NewHeadUI() *HeadUI {
	return &HeadUI{app: app.New()}
}

// Connect opens the link once the serial settings are known and returns where command
// lines should be written
type Connect func(controller.Config) (io.Writer, error)

// Write implements io.Writer
func (ui *HeadUI) Write(p []byte) (int, error) {
	ui.mu.Lock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		ui.logText = append(ui.logText, line)
	}
	if len(ui.logText) > maxLogLines {
		ui.logText = ui.logText[len(ui.logText)-maxLogLines:]
	}
	text := strings.Join(ui.logText, "\n")
	view := ui.logView
	ui.mu.Unlock()

	if view != nil {
		fyne.Do(func() {
			view.SetText(text)
		})
	}

	return len(p), nil
}

// Run asks for serial settings when no port is configured, connects, then shows the
// panel until the window closes or ctx is done
func (ui *HeadUI) Run(ctx context.Context, cfg controller.Config, connect Connect) {
	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			ui.app.Quit()
		})
	}()

	start := func() {
		w, err := connect(cfg)
		if err != nil {
			window := ui.app.NewWindow("Nova Head - Error")
			window.Show()
			showError(ui.app, window, err)
			return
		}
		ui.showPanel(w)
	}

	if cfg.SerialPort == "" {
		cw := NewConfigWindow(ui.app)
		cw.OnSubmit = start
		cw.Show(&cfg)
	} else {
		start()
	}

	ui.app.Run()
}

func (ui *HeadUI) showPanel(w io.Writer) {
	window := ui.app.NewWindow("Nova Head")

	c := &controllerWrapper{writer: w}
	rest := loop.DefaultConfig().StartAngles

	sliders := map[novahead.Channel]*widget.Slider{}
	content := container.NewVBox()
	for _, ch := range novahead.Channels() {
		row, slider := createSlider(ch, rest[ch], func(value float64) {
			c.Set(ch, value)
		})
		sliders[ch] = slider
		content.Add(row)
	}

	restButton := widget.NewButton("Rest Pose", func() {
		c.Pose(rest)
		for ch, slider := range sliders {
			slider.SetValue(float64(rest[ch]))
		}
	})

	ui.mu.Lock()
	ui.logView = widget.NewLabel(strings.Join(ui.logText, "\n"))
	ui.mu.Unlock()
	logScroll := container.NewVScroll(ui.logView)
	logScroll.SetMinSize(fyne.NewSize(300, 100))

	content.Add(restButton)
	content.Add(widget.NewAccordion(widget.NewAccordionItem("Logs", logScroll)))

	window.SetContent(content)
	window.Resize(fyne.NewSize(320, 360))
	window.SetOnClosed(ui.app.Quit)
	window.Show()
}
