package main

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/thunderboard/thunderboard/board"
)

func init() {
	initGlog()
}

func initGlog() {
	flag.Set("logtostderr", "true")
	flag.Set("stderrthreshold", "INFO")
	flag.Set("v", "0")
}

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(`
url: ws://localhost:5000/ws
codec: msgpack
dashboard:
  default_board: Main
  text_viewport_lines: 20
transport:
  ping_timeout: 3s
  max_reconnect_timeout: 1m
  send_buffer_size: 8
`))
	assert.Equal(t, err, nil)
	assert.Equal(t, config.Url, "ws://localhost:5000/ws")

	dashboardSettings := config.DashboardSettings()
	assert.Equal(t, dashboardSettings.DefaultBoard, board.BoardName("Main"))
	assert.Equal(t, dashboardSettings.TextViewportLines, 20)
	// not set keeps the default
	assert.Equal(t, dashboardSettings.EventQueueSize, board.DefaultDashboardSettings().EventQueueSize)

	transportSettings, err := config.WsTransportSettings()
	assert.Equal(t, err, nil)
	assert.Equal(t, transportSettings.Codec.Name(), board.CodecMsgpack)
	assert.Equal(t, transportSettings.PingTimeout, 3*time.Second)
	assert.Equal(t, transportSettings.MaxReconnectTimeout, time.Minute)
	assert.Equal(t, transportSettings.SendBufferSize, 8)
	assert.Equal(t, transportSettings.HandshakeTimeout, board.DefaultWsTransportSettings().HandshakeTimeout)

	_, err = ParseConfig([]byte(`codec: xml`))
	assert.Equal(t, errors.Is(err, board.ErrUnknownCodec), true)

	_, err = ParseConfig([]byte(`dashboard: [1, 2]`))
	assert.NotEqual(t, err, nil)

	_, err = ParseConfig([]byte(`dashboard: {event_queue_size: -1}`))
	assert.NotEqual(t, err, nil)

	empty, err := ParseConfig([]byte(``))
	assert.Equal(t, err, nil)
	transportSettings, err = empty.WsTransportSettings()
	assert.Equal(t, err, nil)
	assert.Equal(t, transportSettings.Codec.Name(), board.CodecJson)
}

func TestParseCommand(t *testing.T) {
	renderer := NewConsoleRenderer(&bytes.Buffer{})

	parse := func(line string) board.Event {
		event, err := ParseCommand(line, renderer)
		assert.Equal(t, err, nil)
		return event
	}

	assert.Equal(t, parse("activate Logs"), &board.ActivateBoardEvent{Board: "Logs"})
	assert.Equal(t, parse("move cam Video"), &board.MoveObjectEvent{ObjectId: "cam", Board: "Video"})
	assert.Equal(t, parse("close cam"), &board.CloseObjectEvent{ObjectId: "cam"})
	assert.Equal(t, parse("close-board Video"), &board.CloseBoardEvent{Board: "Video"})
	assert.Equal(t, parse("subscribe cam"), &board.ApplySubscriptionEditEvent{
		Selection: map[board.ObjectId]bool{"cam": true},
	})
	assert.Equal(t, parse("unsubscribe cam"), &board.ApplySubscriptionEditEvent{
		Selection: map[board.ObjectId]bool{"cam": false},
	})
	assert.Equal(t, parse("select a b"), &SelectEvent{Selected: []board.ObjectId{"a", "b"}})
	assert.Equal(t, parse("list"), &board.RequestListEvent{})
	assert.Equal(t, parse("clean-inactive"), &board.CleanInactiveEvent{})
	assert.Equal(t, parse("scroll log 4"), &board.ScrollTextEvent{ObjectId: "log", Top: 4})
	assert.Equal(t, parse("resize cam 300"), &board.ResizeObjectEvent{ObjectId: "cam", Height: 300})
	assert.Equal(t, parse("submit dlg name hello world"), &board.SubmitDialogFieldEvent{
		ObjectId: "dlg",
		Field:    "name",
		Value:    "hello world",
	})
	assert.Equal(t, parse("submit dlg go"), &board.SubmitDialogFieldEvent{ObjectId: "dlg", Field: "go"})
	assert.Equal(t, parse("leave"), &board.LeaveEvent{})

	for _, line := range []string{"", "bogus", "move cam", "scroll log x", "resize cam"} {
		_, err := ParseCommand(line, renderer)
		assert.NotEqual(t, err, nil)
	}
}

func TestConsoleRenderer(t *testing.T) {
	out := &bytes.Buffer{}
	renderer := NewConsoleRenderer(out)
	dashboard := board.NewDashboardWithDefaults(&board.NopEmitter{}, renderer)

	dashboard.Handle(&board.IdAssignedEvent{ClientId: 1})
	dashboard.Handle(&board.UpdateEvent{Payload: &board.ObjectPayload{
		Id:     "log",
		Name:   "Log",
		Board:  "Logs",
		Type:   board.ObjectTypeText,
		Active: true,
		Data:   "hello",
	}})
	dashboard.Handle(&board.UpdateEvent{Payload: &board.ObjectPayload{
		Id:     "dlg",
		Name:   "Controls",
		Board:  "Control",
		Type:   board.ObjectTypeDialog,
		Active: true,
		Fields: []board.DialogFieldPayload{
			{Name: "speed", Type: board.DialogFieldInput, Text: "Speed", Value: "3", Group: "motor"},
			{Name: "go", Type: board.DialogFieldButton, Text: "Go", Group: "motor"},
		},
	}})

	output := out.String()
	assert.Equal(t, strings.Contains(output, "+ board Logs"), true)
	assert.Equal(t, strings.Contains(output, "* board Logs"), true)
	assert.Equal(t, strings.Contains(output, "[Logs] Log (text) live"), true)
	assert.Equal(t, strings.Contains(output, "  hello"), true)
	// not the active board
	assert.Equal(t, strings.Contains(output, "Speed"), false)
	assert.Equal(t, strings.Contains(output, "board Control (1)"), true)

	view, _ := dashboard.Objects().Get("dlg")
	assert.Equal(t, renderer.Lines(view), []string{
		"[Control] Controls (dialog) live",
		"  motor",
		"    Speed: [3]",
		"    <Go>",
	})

	dashboard.MarkInactive("dlg")
	assert.Equal(t, renderer.Lines(view), []string{
		"[Control] Controls (dialog) stopped",
		"  motor",
		"    Speed: [3] (disabled)",
		"    <Go> (disabled)",
	})

	assert.Equal(t, renderer.Summary(), []string{
		"  Control 1 objects (1)",
		"* Logs 1 objects",
	})

	dashboard.MoveObject("dlg", "Logs")
	dashboard.CloseBoard("Control")
	assert.Equal(t, renderer.Summary(), []string{
		"* Logs 2 objects",
	})

	dashboard.Handle(&SelectEvent{Selected: []board.ObjectId{"log"}})
	assert.Equal(t, dashboard.Objects().Ids(), []board.ObjectId{"log"})
	assert.Equal(t, strings.Contains(out.String(), "- dlg"), true)

	out.Reset()
	dashboard.Handle(&SummaryEvent{renderer: renderer})
	assert.Equal(t, out.String(), "* Logs 1 objects\n")
}

func TestConsoleTruncate(t *testing.T) {
	renderer := NewConsoleRenderer(&bytes.Buffer{})
	renderer.width = 4

	assert.Equal(t, renderer.truncate("abc"), "abc")
	assert.Equal(t, renderer.truncate("abcdef"), "abcd")
	// multi-byte characters are kept whole
	assert.Equal(t, renderer.truncate("日本語のログ"), "日本語の")
	assert.Equal(t, renderer.truncate("ab€€€"), "ab€€")
}

func TestCatalogLines(t *testing.T) {
	assert.Equal(t, CatalogLines([]board.ObjectSummary{
		{Id: "a", Name: "A", Board: "X", Subscribed: true},
		{Id: "b", Name: "B", Board: "Y"},
	}), []string{
		"[x] a A (X)",
		"[ ] b B (Y)",
	})
}
