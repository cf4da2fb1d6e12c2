// Command reportgen exports inspection reports for a project without
// starting the editor UI.
package main

import (
	"flag"
	"fmt"
	"os"

	"plan-marker/internal/config"
	"plan-marker/internal/logging"
	"plan-marker/internal/project"
	"plan-marker/internal/report"
)

func main() {
	projectPath := flag.String("project", "", "Path to the project file")
	partID := flag.String("part", "", "Part id or name (default: all parts)")
	subID := flag.String("sub", "", "Sub-part id or name (default: all sub-parts)")
	templates := flag.String("templates", "", "Directory holding the HWPX templates")
	out := flag.String("out", "", "Output directory for the reports")
	flag.Parse()

	if *projectPath == "" {
		fmt.Println("Usage: reportgen -project <file> [-part <id>] [-sub <id>] [-templates <dir>] [-out <dir>]")
		os.Exit(1)
	}

	if err := config.Load("."); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Default(config.GetString("logLevel"))

	templatesDir := *templates
	if templatesDir == "" {
		templatesDir = config.GetString("report.templatePath")
	}
	outputDir := *out
	if outputDir == "" {
		outputDir = config.GetString("report.outputDir")
	}

	proj, err := project.Load(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
		os.Exit(1)
	}

	exported := 0
	for _, part := range proj.Parts {
		if *partID != "" && part.ID != *partID && part.Name != *partID {
			continue
		}
		for _, sub := range part.SubParts {
			if *subID != "" && sub.ID != *subID && sub.Name != *subID {
				continue
			}

			exp := report.NewExporter(proj, part, sub, templatesDir, outputDir, log)

			visual, err := exp.ExportVisualInspection()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to export table for %s/%s: %v\n", part.Name, sub.Name, err)
				os.Exit(1)
			}
			drawing, err := exp.ExportDefectDrawing()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to export drawing for %s/%s: %v\n", part.Name, sub.Name, err)
				os.Exit(1)
			}

			fmt.Printf("%s\n%s\n", visual, drawing)
			exported += 2
		}
	}

	if exported == 0 {
		fmt.Fprintln(os.Stderr, "No matching part/sub-part found")
		os.Exit(1)
	}
}
