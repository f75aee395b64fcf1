package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantType CommandType
		wantArgs []string
	}{
		{"/ration piglet 20 mid 12", CommandRation, []string{"piglet", "20", "mid", "12"}},
		{"Ration Sow-Gestating 200", CommandRation, []string{"Sow-Gestating", "200"}},
		{"/FEED 40 Barn A", CommandFeed, []string{"40", "Barn", "A"}},
		{"/feed 45.5 nursery", CommandFeed, []string{"45.5", "nursery"}},
		{"/help", CommandHelp, nil},
		{"/eggs 120", CommandUnknown, []string{"120"}},
		{"   ", CommandUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd := ParseCommand(tt.in)
			assert.Equal(t, tt.wantType, cmd.Type)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, tt.in, cmd.Raw)
		})
	}
}

func TestInboundMessageBody(t *testing.T) {
	raw := `{"from":"224600000000","id":"wamid.1","type":"interactive",
		"interactive":{"type":"button_reply","button_reply":{"id":"/help","title":"Help"}}}`

	var msg InboundMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, "/help", msg.Body())

	msg = InboundMessage{Text: &TextContent{Body: "/feed 30"}}
	assert.Equal(t, "/feed 30", msg.Body())

	assert.Empty(t, InboundMessage{Type: "image"}.Body())
}
