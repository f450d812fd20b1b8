package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/coyote/internal/knowledge"
)

func newLessonsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "Manage the lessons-learned knowledge base",
	}

	cmd.AddCommand(newLessonsListCmd(flags))
	cmd.AddCommand(newLessonsAddCmd(flags))
	cmd.AddCommand(newLessonsCategoriesCmd(flags))

	return cmd
}

type lessonsListOptions struct {
	category string
	file     string
	search   string
	limit    int
	output   string
}

func newLessonsListCmd(flags *rootFlags) *cobra.Command {
	opts := lessonsListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lessons matching the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}

			filter := knowledge.Filter{
				Text:  opts.search,
				Limit: opts.limit,
			}
			if opts.category != "" {
				filter.Categories = []string{opts.category}
			}
			if opts.file != "" {
				filter.Files = []string{opts.file}
			}

			results := a.store.Query(filter)

			if opts.output == "json" {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(lessonsToPayload(results))
			}

			if len(results) == 0 {
				fmt.Println("No lessons found")
				return nil
			}
			for _, lesson := range results {
				fmt.Printf("\n[%s] %s\n", lesson.Category, lesson.ID)
				fmt.Printf("  Lesson: %s\n", lesson.Lesson)
				fmt.Printf("  Prevention: %s\n", lesson.Prevention)
				if len(lesson.Tags) > 0 {
					fmt.Printf("  Tags: %s\n", strings.Join(lesson.Tags, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "C", "", "Filter by category")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Filter by related file")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Full-text search over lesson and prevention")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum results")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json)")

	return cmd
}

type lessonsAddOptions struct {
	incidentID string
	category   string
	lesson     string
	prevention string
	files      []string
	tags       []string
	confidence float64
}

func newLessonsAddCmd(flags *rootFlags) *cobra.Command {
	opts := lessonsAddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a lesson to the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}

			lesson, err := a.store.Add(opts.incidentID, opts.category, opts.lesson, opts.prevention, opts.files, opts.tags, opts.confidence)
			if err != nil {
				return err
			}

			fmt.Printf("Added lesson %s\n", lesson.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.incidentID, "incident", "i", "", "Incident ID")
	cmd.Flags().StringVarP(&opts.category, "category", "C", "", "Category")
	cmd.Flags().StringVarP(&opts.lesson, "lesson", "l", "", "Lesson text")
	cmd.Flags().StringVarP(&opts.prevention, "prevention", "p", "", "Prevention steps")
	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "Related file (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.tags, "tag", "t", nil, "Tag (repeatable)")
	cmd.Flags().Float64Var(&opts.confidence, "confidence", knowledge.DefaultConfidence, "Confidence score in (0, 1]")
	cmd.MarkFlagRequired("incident")   //nolint:errcheck
	cmd.MarkFlagRequired("category")   //nolint:errcheck
	cmd.MarkFlagRequired("lesson")     //nolint:errcheck
	cmd.MarkFlagRequired("prevention") //nolint:errcheck

	return cmd
}

func newLessonsCategoriesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List all lesson categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}

			categories := a.store.Categories()
			if len(categories) == 0 {
				fmt.Println("No categories found")
				return nil
			}
			for _, category := range categories {
				fmt.Printf("  - %s\n", category)
			}
			return nil
		},
	}
}

type lessonPayload struct {
	ID           string   `json:"id"`
	IncidentID   string   `json:"incident_id"`
	Category     string   `json:"category"`
	Lesson       string   `json:"lesson"`
	Prevention   string   `json:"prevention"`
	RelatedFiles []string `json:"related_files,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Confidence   float64  `json:"confidence"`
	CreatedAt    string   `json:"created_at"`
}

func lessonsToPayload(lessons []knowledge.Lesson) []lessonPayload {
	out := make([]lessonPayload, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, lessonPayload{
			ID:           lesson.ID,
			IncidentID:   lesson.IncidentID,
			Category:     lesson.Category,
			Lesson:       lesson.Lesson,
			Prevention:   lesson.Prevention,
			RelatedFiles: lesson.RelatedFiles,
			Tags:         lesson.Tags,
			Confidence:   lesson.Confidence,
			CreatedAt:    lesson.CreatedAt.Format("2006-01-02"),
		})
	}
	return out
}
