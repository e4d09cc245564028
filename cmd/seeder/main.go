package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/clinref/medkb/ingestion"
	"github.com/clinref/medkb/kb"
	"github.com/clinref/medkb/storage/badger"
)

// sampleRecords is a small corpus of clinical reference material spanning
// several systems and modalities, enough to exercise search, statistics,
// and related-entry lookups.
var sampleRecords = []ingestion.Record{
	{
		Article: &ingestion.ArticleRecord{
			Title:     "Pneumothorax",
			Synopsis:  "Air in the pleural space causing partial or complete lung collapse.",
			Body:      "Pneumothorax presents with sudden pleuritic chest pain and dyspnea. On an erect chest X-ray the visceral pleural line is visible with absent lung markings peripherally. Tension pneumothorax shifts the mediastinum away from the affected side and is a clinical emergency.",
			System:    "respiratory",
			Modality:  []string{"x-ray", "ct"},
			Pathology: []string{"pneumothorax"},
			BodyPart:  "chest",
			Tags:      []string{"emergency", "pleura"},
			Cases: []ingestion.CaseRecord{
				{
					Title:        "Spontaneous pneumothorax in a tall young male",
					Presentation: "A 22 year old presents with sudden right-sided chest pain while at rest.",
					Discussion:   "Erect chest X-ray shows a thin visceral pleural line at the right apex. Primary spontaneous pneumothorax is most common in tall thin young men.",
					Difficulty:   "beginner",
					Studies: []ingestion.StudyRecord{
						{
							Modality: "x-ray",
							Caption:  "Erect PA chest radiograph",
							Images: []ingestion.ImageRecord{
								{URL: "https://img.clinref.example/pneumo-pa.png", Caption: "Visceral pleural line at the right apex"},
							},
						},
					},
				},
				{
					Title:        "Tension pneumothorax after trauma",
					Presentation: "A ventilated trauma patient becomes acutely hypotensive with absent left breath sounds.",
					Discussion:   "Supine radiograph shows a deep sulcus sign and mediastinal shift to the right. Needle decompression precedes imaging when the diagnosis is clinical.",
					Difficulty:   "advanced",
					Studies: []ingestion.StudyRecord{
						{
							Modality: "x-ray",
							Caption:  "Supine AP chest radiograph",
							Images: []ingestion.ImageRecord{
								{URL: "https://img.clinref.example/tension-ap.png"},
							},
						},
					},
				},
			},
		},
	},
	{
		Article: &ingestion.ArticleRecord{
			Title:     "Glioblastoma",
			Synopsis:  "The most common and most aggressive primary brain tumour in adults.",
			Body:      "Glioblastoma typically appears on MRI as a heterogeneously enhancing mass with central necrosis and surrounding vasogenic edema, most often in the supratentorial white matter. Spread across the corpus callosum produces the classic butterfly pattern.",
			System:    "nervous",
			Modality:  []string{"mri", "ct"},
			Pathology: []string{"glioblastoma", "tumor"},
			BodyPart:  "brain",
			Tags:      []string{"oncology", "neuro"},
			Images: []ingestion.ImageRecord{
				{URL: "https://img.clinref.example/gbm-t1c.png", Caption: "Ring-enhancing mass with central necrosis on T1 post contrast"},
			},
		},
	},
	{
		Article: &ingestion.ArticleRecord{
			Title:     "Multiple sclerosis",
			Synopsis:  "A chronic demyelinating disease of the central nervous system.",
			Body:      "MRI shows ovoid periventricular white matter lesions oriented perpendicular to the ventricles, the so-called Dawson fingers. Dissemination in space and time underpins the McDonald diagnostic criteria.",
			System:    "nervous",
			Modality:  []string{"mri"},
			Pathology: []string{"multiple sclerosis", "demyelination"},
			BodyPart:  "brain",
			Tags:      []string{"neuro", "chronic"},
		},
	},
	{
		Case: &ingestion.CaseRecord{
			Title:        "Acute appendicitis with appendicolith",
			Presentation: "A 19 year old presents with migratory right iliac fossa pain, fever, and anorexia.",
			Discussion:   "CT shows a dilated fluid-filled appendix with periappendiceal fat stranding and a calcified appendicolith. Ultrasound is preferred first-line in children and pregnancy.",
			System:       "digestive",
			Modality:     []string{"ct", "ultrasound"},
			Pathology:    []string{"appendicitis"},
			BodyPart:     "abdomen",
			Difficulty:   "intermediate",
			Studies: []ingestion.StudyRecord{
				{
					Modality: "ct",
					Caption:  "Contrast-enhanced CT abdomen",
					Images: []ingestion.ImageRecord{
						{URL: "https://img.clinref.example/appendix-ct.png", Caption: "Dilated appendix with fat stranding"},
					},
				},
			},
		},
	},
	{
		Case: &ingestion.CaseRecord{
			Title:        "Scaphoid fracture with occult initial radiograph",
			Presentation: "A young adult falls on an outstretched hand with anatomical snuffbox tenderness.",
			Discussion:   "Initial radiographs are normal in up to a fifth of scaphoid fractures. MRI shows marrow edema across the scaphoid waist. Missed fractures risk avascular necrosis of the proximal pole.",
			System:       "musculoskeletal",
			Modality:     []string{"x-ray", "mri"},
			Pathology:    []string{"fracture"},
			BodyPart:     "wrist",
			Difficulty:   "intermediate",
		},
	},
	{
		Article: &ingestion.ArticleRecord{
			Title:     "Pulmonary tuberculosis",
			Synopsis:  "Mycobacterial infection with a predilection for the lung apices.",
			Body:      "Post-primary tuberculosis favours the apical and posterior segments of the upper lobes, with cavitation, tree-in-bud nodularity, and fibrotic volume loss. Miliary disease produces innumerable uniform 1-3 mm nodules.",
			System:    "respiratory",
			Modality:  []string{"x-ray", "ct"},
			Pathology: []string{"tuberculosis", "infection"},
			BodyPart:  "chest",
			Tags:      []string{"infection"},
		},
	},
}

var (
	outFileName = flag.String("out", "records.json", "output file for the generated records")
	verify      = flag.Bool("verify", false, "run the generated records through an in-memory import and print the totals")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// verifyRecords imports the sample corpus into a throwaway in-memory
// knowledge base to prove the file it wrote is ingestible.
func verifyRecords(ctx context.Context, records []ingestion.Record) error {
	repo, backend, err := badger.NewMemoryRepository()
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	svc, err := kb.NewService(repo)
	if err != nil {
		return err
	}

	pipeline, err := ingestion.NewPipeline(svc)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	report, err := pipeline.ImportBatch(ctx, records)
	if err != nil {
		return err
	}

	stats := svc.Stats()
	slog.Info("verified sample corpus",
		"imported", report.Imported,
		"failed", len(report.Errors),
		"entries", stats.TotalEntries,
		"articles", stats.TotalArticles,
		"cases", stats.TotalCases)
	return nil
}

func main() {
	data, err := json.MarshalIndent(sampleRecords, "", "  ")
	if err != nil {
		panic(err)
	}

	if err := os.WriteFile(*outFileName, data, 0644); err != nil {
		panic(err)
	}
	slog.Info("wrote sample records", "file", *outFileName, "records", len(sampleRecords))

	if *verify {
		if err := verifyRecords(context.Background(), sampleRecords); err != nil {
			panic(err)
		}
	}
}
