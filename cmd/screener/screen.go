package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/pipeline"
)

var (
	screenZip            string
	screenCompanyID      int64
	screenJobTitle       string
	screenJobDescription string
	screenMinExperience  float64
	screenRequiredSkills string
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen a zip of resume PDFs against job criteria",
	Long:  `Run the full screening pipeline locally: every PDF in the archive is scored, results are persisted, and the batch report is printed as JSON.`,
	RunE:  runScreen,
}

func init() {
	screenCmd.Flags().StringVar(&screenZip, "zip", "", "Path to a zip archive of resume PDFs (required)")
	screenCmd.Flags().Int64Var(&screenCompanyID, "company-id", 0, "Owning company ID (required)")
	screenCmd.Flags().StringVar(&screenJobTitle, "job-title", "", "Job title (required)")
	screenCmd.Flags().StringVar(&screenJobDescription, "job-description", "", "Path to a job description text file")
	screenCmd.Flags().Float64Var(&screenMinExperience, "min-experience", 0, "Minimum years of experience")
	screenCmd.Flags().StringVar(&screenRequiredSkills, "required-skills", "", "Comma-separated required skills (required)")
	_ = screenCmd.MarkFlagRequired("zip")
	_ = screenCmd.MarkFlagRequired("company-id")
	_ = screenCmd.MarkFlagRequired("job-title")
	_ = screenCmd.MarkFlagRequired("required-skills")
	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required for screening")
	}

	skills := splitSkillsFlag(screenRequiredSkills)
	if len(skills) == 0 {
		return fmt.Errorf("--required-skills must name at least one skill")
	}

	archive, err := os.ReadFile(screenZip)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	files, err := ingestion.ListResumePDFs(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("archive %s contains no PDF files", screenZip)
	}

	description := ""
	if screenJobDescription != "" {
		raw, err := os.ReadFile(screenJobDescription)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		description = ingestion.NormalizeJobDescription(string(raw))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	defer func() { _ = client.Close() }()
	extractor := llm.NewExtractor(client, cfg.CallsPerMinute, "")

	job, err := database.CreateJob(ctx, &db.Job{
		CompanyID:      screenCompanyID,
		Title:          screenJobTitle,
		Description:    description,
		MinExperience:  screenMinExperience,
		RequiredSkills: skills,
		TotalResumes:   len(files),
	})
	if err != nil {
		return err
	}

	if description != "" {
		if requirements := extractor.ExtractJDRequirements(ctx, description); len(requirements) > 0 {
			if err := database.SetJobRequirements(ctx, job.ID, requirements); err != nil {
				return err
			}
			job.JDRequirements = requirements
		}
	}

	runner := pipeline.NewRunner(database, extractor)
	if cfg.Workers > 0 {
		runner.Workers = cfg.Workers
	}
	result, err := runner.Run(ctx, job, files)
	if err != nil {
		return fmt.Errorf("screening failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Job %s completed: %d scored, %d knocked out, %d duplicates, %d unprocessable\n",
		job.ID, result.Scored, result.KnockedOut, result.DuplicatesSkipped, result.Unprocessable)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func splitSkillsFlag(csv string) []string {
	var skills []string
	for _, part := range strings.Split(csv, ",") {
		if skill := strings.ToLower(strings.TrimSpace(part)); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}
