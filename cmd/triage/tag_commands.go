package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mselway/triage/internal/ui"
	"github.com/mselway/triage/task"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

// tag list
var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Args:  cobra.NoArgs,
	RunE:  runTagList,
}

var tagListJSON bool

// tag add
var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagAdd,
}

var tagAddColor string

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagListCmd, tagAddCmd)

	tagListCmd.Flags().BoolVar(&tagListJSON, "json", false, "Output as JSON")
	tagAddCmd.Flags().StringVar(&tagAddColor, "color", "", "Display color (hex)")
}

func runTagList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	tags := s.coordinator.Tags()
	if tagListJSON {
		return json.NewEncoder(os.Stdout).Encode(tags)
	}

	if len(tags) == 0 {
		fmt.Println("No tags found.")
		return nil
	}
	builder := ui.NewTableBuilder([]string{"ID", "NAME", "COLOR"}, len(tags))
	for _, tag := range tags {
		builder.AddRow([]string{shortID(tag.ID), ui.FormatTagSwatch(tag), tag.Color})
	}
	fmt.Print(builder.String())
	return nil
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	created, err := s.coordinator.AddTag(ctx, task.Tag{Name: args[0], Color: tagAddColor})
	if err != nil {
		return err
	}
	fmt.Printf("Added tag %s: %s\n", created.ID, created.Name)
	return nil
}
