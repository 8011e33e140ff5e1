package lobby

import "encoding/json"

// ExampleHandler implements a minimal domain command set: a single "Add"
// command that sums a list of numbers, broadcasts the result to the room,
// and acknowledges the caller with a Noop. It exists to give the pluggable
// Handler seam a concrete, working tenant; a real deployment supplies its
// own.
var ExampleHandler Handler = HandlerFunc(handleExampleCommand)

func handleExampleCommand(cmd ClientCommand, username Username, room *Room) ServerMessage {
	switch cmd.Type {
	case "Add":
		return handleAdd(cmd.Data, username, room)
	default:
		return ErrorMessage(newError(KindUnknown, "unknown command: "+cmd.Type, nil))
	}
}

func handleAdd(data json.RawMessage, username Username, room *Room) ServerMessage {
	var numbers []uint32
	if err := json.Unmarshal(data, &numbers); err != nil {
		return ErrorMessage(newError(KindUnknown, "invalid Add payload: "+err.Error(), nil))
	}

	var result uint32
	for _, n := range numbers {
		result += n
	}

	room.Send(NewServerMessage("AddResult", map[string]any{
		"result":   result,
		"username": username,
	}))

	return NewServerMessage("Noop", nil)
}
