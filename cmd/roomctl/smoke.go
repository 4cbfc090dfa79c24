package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/coderoom-server/internal/proto"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Join a room, print its state and exit",
	RunE:  runSmoke,
}

func runSmoke(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if _, err := waitFor(ctx, conn, proto.EventHello); err != nil {
		return err
	}
	if err := join(ctx, conn); err != nil {
		return err
	}

	out, err := waitFor(ctx, conn, proto.EventRoomState)
	if err != nil {
		return err
	}
	var state proto.EventRoomStateData
	if err := json.Unmarshal(out.Data, &state); err != nil {
		return fmt.Errorf("unmarshal room state: %w", err)
	}

	fmt.Printf("room=%s you=%s language=%s members=%v chat=%d code=%d bytes\n",
		state.RoomID, state.You, state.Language, state.Members, len(state.Chat), len(state.Code))
	return nil
}
