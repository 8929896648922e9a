package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Inspect live battle rooms on a running battleserver",
}

var roomsListAddr string

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the battle ids currently live on a battleserver instance",
	RunE:  roomsListHandler,
}

func init() {
	roomsCmd.AddCommand(roomsListCmd)
	roomsListCmd.Flags().StringVarP(&roomsListAddr, "addr", "a", "http://localhost:8448",
		"base address of the target battleserver's debug HTTP group")
}

func roomsListHandler(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(roomsListAddr + "/app/debug/battles")
	if err != nil {
		return fmt.Errorf("rooms list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rooms list: server returned %s", resp.Status)
	}

	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return fmt.Errorf("rooms list: decoding response: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("no live battles")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}
