package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselway/triage/task"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

// task add
var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskAdd,
}

var (
	taskAddDescription string
	taskAddPriority    string
	taskAddDue         string
	taskAddTags        []string
	taskAddProgress    int
)

// task list
var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var (
	taskListJSON    bool
	taskListByScore bool
	taskListStatus  string
)

// task show
var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show detailed information about a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskShowJSON bool

// task update
var taskUpdateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a task",
	Aliases: []string{"edit"},
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskUpdate,
}

var (
	taskUpdateTitle       string
	taskUpdateDescription string
	taskUpdatePriority    string
	taskUpdateDue         string
	taskUpdateTags        []string
)

// task toggle
var taskToggleCmd = &cobra.Command{
	Use:   "toggle <id>...",
	Short: "Cycle a task's status (pending, in-progress, completed)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskToggle,
}

// task done
var taskDoneCmd = &cobra.Command{
	Use:     "done <id>...",
	Short:   "Mark one or more tasks as completed",
	Aliases: []string{"finish"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runTaskDone,
}

// task progress
var taskProgressCmd = &cobra.Command{
	Use:   "progress <id> <percent>",
	Short: "Set a task's progress (0-100)",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskProgress,
}

// task delete
var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskDelete,
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskUpdateCmd, taskToggleCmd,
		taskDoneCmd, taskProgressCmd, taskDeleteCmd)
	addDescriptionFlagAliases(taskAddCmd, taskUpdateCmd)

	// task add flags
	taskAddCmd.Flags().StringVarP(&taskAddDescription, "description", "d", "", "Description (markdown)")
	taskAddCmd.Flags().StringVarP(&taskAddPriority, "priority", "p", "low", "Priority (low, medium, high, urgent)")
	taskAddCmd.Flags().StringVar(&taskAddDue, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	taskAddCmd.Flags().StringArrayVarP(&taskAddTags, "tag", "t", nil, "Tag name or id (repeatable)")
	taskAddCmd.Flags().IntVar(&taskAddProgress, "progress", 0, "Initial progress (0-100)")

	// task list flags
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "Output as JSON")
	taskListCmd.Flags().BoolVar(&taskListByScore, "by-score", false, "Sort by score, highest first")
	taskListCmd.Flags().StringVar(&taskListStatus, "status", "", "Filter by status")

	// task show flags
	taskShowCmd.Flags().BoolVar(&taskShowJSON, "json", false, "Output as JSON")

	// task update flags
	taskUpdateCmd.Flags().StringVar(&taskUpdateTitle, "title", "", "New title")
	taskUpdateCmd.Flags().StringVarP(&taskUpdateDescription, "description", "d", "", "New description")
	taskUpdateCmd.Flags().StringVarP(&taskUpdatePriority, "priority", "p", "", "New priority")
	taskUpdateCmd.Flags().StringVar(&taskUpdateDue, "due", "", "New due date (YYYY-MM-DD, RFC3339, or 'none')")
	taskUpdateCmd.Flags().StringArrayVarP(&taskUpdateTags, "tag", "t", nil, "Replace tags (repeatable)")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	draft := task.Task{
		Title:       args[0],
		Description: taskAddDescription,
		Priority:    task.NormalizePriority(task.Priority(taskAddPriority)),
	}
	// Initial progress goes through the transition rules so status and
	// completed_at stay consistent (100 creates a completed task).
	draft, err = task.SetProgress(draft, taskAddProgress, time.Now())
	if err != nil {
		return err
	}
	if taskAddDue != "" {
		due, err := parseDueDate(taskAddDue)
		if err != nil {
			return err
		}
		draft.DueDate = &due
	}
	if len(taskAddTags) > 0 {
		ids, err := resolveTagIDs(s.coordinator.Tags(), taskAddTags)
		if err != nil {
			return err
		}
		draft.TagIDs = ids
	}

	created, err := s.coordinator.AddTask(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Printf("Added task %s: %s (score %d)\n", created.ID, created.Title, created.AIScore)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var tasks []task.Task
	if taskListByScore {
		tasks = s.coordinator.Prioritized()
	} else {
		tasks = s.coordinator.Tasks()
	}
	if taskListStatus != "" {
		status := task.Status(taskListStatus)
		if !status.IsValid() {
			return task.ErrInvalidStatus
		}
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.Status == status {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if taskListJSON {
		return json.NewEncoder(os.Stdout).Encode(tasks)
	}

	fmt.Print(formatTaskTable(tasks, s.coordinator.Tags(), time.Now()))
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	id, err := resolveTaskID(s.coordinator.Tasks(), args[0])
	if err != nil {
		return err
	}
	var found *task.Task
	for _, t := range s.coordinator.Tasks() {
		if t.ID == id {
			match := t
			found = &match
			break
		}
	}
	if found == nil {
		return task.ErrTaskNotFound
	}

	if taskShowJSON {
		return json.NewEncoder(os.Stdout).Encode(found)
	}

	fmt.Print(formatTaskDetail(*found, s.coordinator.Tags(), time.Now()))
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	id, err := resolveTaskID(s.coordinator.Tasks(), args[0])
	if err != nil {
		return err
	}
	var current task.Task
	ok := false
	for _, t := range s.coordinator.Tasks() {
		if t.ID == id {
			current = t
			ok = true
			break
		}
	}
	if !ok {
		return task.ErrTaskNotFound
	}

	if cmd.Flags().Changed("title") {
		current.Title = taskUpdateTitle
	}
	if cmd.Flags().Changed("description") {
		current.Description = taskUpdateDescription
	}
	if cmd.Flags().Changed("priority") {
		current.Priority = task.NormalizePriority(task.Priority(taskUpdatePriority))
	}
	if cmd.Flags().Changed("due") {
		if taskUpdateDue == "none" {
			current.DueDate = nil
		} else {
			due, err := parseDueDate(taskUpdateDue)
			if err != nil {
				return err
			}
			current.DueDate = &due
		}
	}
	if cmd.Flags().Changed("tag") {
		ids, err := resolveTagIDs(s.coordinator.Tags(), taskUpdateTags)
		if err != nil {
			return err
		}
		current.TagIDs = ids
	}

	updated, err := s.coordinator.UpdateTask(ctx, current)
	if err != nil {
		return err
	}
	fmt.Printf("Updated task %s: %s (score %d)\n", updated.ID, updated.Title, updated.AIScore)
	return nil
}

func runTaskToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	for _, arg := range args {
		id, err := resolveTaskID(s.coordinator.Tasks(), arg)
		if err != nil {
			return err
		}
		toggled, err := s.coordinator.ToggleTaskStatus(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Task %s is now %s\n", toggled.ID, toggled.Status)
	}
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	for _, arg := range args {
		id, err := resolveTaskID(s.coordinator.Tasks(), arg)
		if err != nil {
			return err
		}
		completed, err := s.coordinator.UpdateTaskProgress(ctx, id, task.ProgressMax)
		if err != nil {
			return err
		}
		fmt.Printf("Completed task %s: %s\n", completed.ID, completed.Title)
	}
	return nil
}

func runTaskProgress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var progress int
	if _, err := fmt.Sscanf(args[1], "%d", &progress); err != nil {
		return fmt.Errorf("invalid progress %q", args[1])
	}

	id, err := resolveTaskID(s.coordinator.Tasks(), args[0])
	if err != nil {
		return err
	}
	updated, err := s.coordinator.UpdateTaskProgress(ctx, id, progress)
	if err != nil {
		return err
	}
	fmt.Printf("Task %s at %d%% (%s)\n", updated.ID, updated.Progress, updated.Status)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	for _, arg := range args {
		id, err := resolveTaskID(s.coordinator.Tasks(), arg)
		if err != nil {
			return err
		}
		if err := s.coordinator.DeleteTask(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s\n", id)
	}
	return nil
}

func parseDueDate(value string) (time.Time, error) {
	if due, err := time.Parse(time.RFC3339, value); err == nil {
		return due, nil
	}
	due, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q (expected YYYY-MM-DD or RFC3339)", value)
	}
	// Day-granular dates land at end of day so "due tomorrow" means
	// any time tomorrow.
	return due.Add(24*time.Hour - time.Second), nil
}
