package pipeline

import (
	"context"
	"testing"

	"claimlens-service/internal/app/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeTariffRepo struct {
	byCode map[string]float64
	byName map[string]float64
}

func (f *fakeTariffRepo) InsertTariffs(_ context.Context, tariffs []models.Tariff) (int, error) {
	return len(tariffs), nil
}

func (f *fakeTariffRepo) FindTariffByCode(_ context.Context, itemCode string) (*models.Tariff, error) {
	if price, ok := f.byCode[itemCode]; ok {
		return &models.Tariff{ItemCode: itemCode, Price: price}, nil
	}
	return nil, nil
}

func (f *fakeTariffRepo) FindTariffByName(_ context.Context, itemName string) (*models.Tariff, error) {
	if price, ok := f.byName[itemName]; ok {
		return &models.Tariff{ItemName: itemName, Price: price}, nil
	}
	return nil, nil
}

func (f *fakeTariffRepo) CountTariffs(_ context.Context) (int64, error) {
	return int64(len(f.byCode) + len(f.byName)), nil
}

func cleanInput() ReconcileInput {
	return ReconcileInput{
		CaseContext: models.CaseContext{
			Patient:       models.PatientIdentity{Name: "John Smith", PatientID: "H123", Gender: "Male"},
			AdmissionDate: "2024-01-10",
			DischargeDate: "2024-01-15",
		},
		Invoice: &models.Invoice{
			Patient:      models.PatientIdentity{Name: "Dr. John Smith", PatientID: "H123", Gender: "Male"},
			TotalClaimed: 500,
			LineItems: []models.LineItem{
				{Name: "CBC", Type: "investigative", Date: "2024-01-12", Units: 1, UnitPrice: 500, TotalPrice: 500, ProofRequired: true, ProofPresent: true},
			},
		},
		ClaimedAmount: 500,
	}
}

func TestReconcilePerfectClaimScoresHundred(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())

	findings, score := engine.Reconcile(context.Background(), cleanInput())

	assert.Empty(t, findings)
	assert.Equal(t, 100.0, score.AccuracyScore)
	assert.True(t, score.Passed)
	assert.NotContains(t, score.PerCategoryScore, "tariffs", "disabled tariff check stays out of the breakdown")
}

func TestReconcileNoLineItemsStillScoresHundred(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())
	in := cleanInput()
	in.Invoice.LineItems = nil
	in.Invoice.TotalClaimed = 0

	_, score := engine.Reconcile(context.Background(), in)

	assert.Equal(t, 100.0, score.AccuracyScore, "categories with nothing to check score 100")
	assert.True(t, score.Passed)
}

func TestReconcilePatientMismatchFailsThreshold(t *testing.T) {
	repo := &fakeTariffRepo{byName: map[string]float64{"CBC": 500}}
	engine := NewReconciliationEngine(repo, 80, zap.NewNop())
	in := cleanInput()
	in.Invoice.Patient = models.PatientIdentity{Name: "Jane Smith", PatientID: "H999", Gender: "Female"}
	in.TariffCheckEnabled = true

	findings, score := engine.Reconcile(context.Background(), in)

	assert.Equal(t, 0.0, score.PerCategoryScore["patient_details"])
	assert.Equal(t, 75.0, score.AccuracyScore)
	assert.False(t, score.Passed)
	assert.Len(t, findings, 3)
}

func TestReconcileDateWindowIsInclusive(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())

	t.Run("boundary days are valid", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.LineItems[0].Date = "2024-01-10"
		findings, _ := engine.Reconcile(context.Background(), in)
		assert.Empty(t, findings)

		in.Invoice.LineItems[0].Date = "2024-01-15"
		findings, _ = engine.Reconcile(context.Background(), in)
		assert.Empty(t, findings)
	})

	t.Run("one day outside is invalid", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.LineItems[0].Date = "2024-01-09"
		findings, score := engine.Reconcile(context.Background(), in)
		assert.Equal(t, 0.0, score.PerCategoryScore["dates"])
		if assert.Len(t, findings, 1) {
			assert.Equal(t, "dates", findings[0].Category)
			assert.Equal(t, "high", findings[0].Severity)
		}
	})

	t.Run("missing date is its own finding", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.LineItems[0].Date = ""
		findings, _ := engine.Reconcile(context.Background(), in)
		if assert.Len(t, findings, 1) {
			assert.Contains(t, findings[0].Description, "no service date")
		}
	})
}

func TestReconcileApprovalWindowChecked(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())
	in := cleanInput()
	in.Approval = models.ApprovalRecord{
		Found:        true,
		ApprovalFrom: "2024-01-13",
		ApprovalTo:   "2024-01-20",
		Patient:      models.PatientIdentity{Name: "John Smith"},
	}

	findings, _ := engine.Reconcile(context.Background(), in)

	if assert.Len(t, findings, 1) {
		assert.Contains(t, findings[0].Description, "approval validity window")
		assert.Equal(t, "approval", findings[0].Source)
	}
}

func TestReconcileTariffEpsilon(t *testing.T) {
	repo := &fakeTariffRepo{byCode: map[string]float64{"LAB01": 50000}}
	engine := NewReconciliationEngine(repo, 80, zap.NewNop())

	t.Run("half a rupee off is a mismatch", func(t *testing.T) {
		in := cleanInput()
		in.TariffCheckEnabled = true
		in.Invoice.LineItems[0].Code = "LAB01"
		in.Invoice.LineItems[0].UnitPrice = 49999.50
		in.Invoice.LineItems[0].TotalPrice = 49999.50
		in.Invoice.TotalClaimed = 49999.50

		findings, _ := engine.Reconcile(context.Background(), in)

		item := in.Invoice.LineItems[0]
		if assert.NotNil(t, item.TariffMatch) {
			assert.False(t, item.TariffMatch.Match)
			assert.InDelta(t, -0.50, *item.TariffMatch.Difference, 0.001)
		}
		assert.NotEmpty(t, findings)
	})

	t.Run("sub-paisa drift matches", func(t *testing.T) {
		in := cleanInput()
		in.TariffCheckEnabled = true
		in.Invoice.LineItems[0].Code = "LAB01"
		in.Invoice.LineItems[0].UnitPrice = 50000.005
		in.Invoice.LineItems[0].TotalPrice = 50000.005
		in.Invoice.TotalClaimed = 50000.005

		_, score := engine.Reconcile(context.Background(), in)

		assert.True(t, in.Invoice.LineItems[0].TariffMatch.Match)
		assert.Equal(t, 100.0, score.PerCategoryScore["tariffs"])
	})

	t.Run("unknown item is annotated but not scored", func(t *testing.T) {
		in := cleanInput()
		in.TariffCheckEnabled = true
		in.Invoice.LineItems[0].Name = "Obscure Procedure"

		_, score := engine.Reconcile(context.Background(), in)

		item := in.Invoice.LineItems[0]
		if assert.NotNil(t, item.TariffMatch) {
			assert.Equal(t, "No tariff found", item.TariffMatch.Note)
		}
		assert.Equal(t, 100.0, score.PerCategoryScore["tariffs"])
	})
}

func TestReconcileCodeChecks(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())
	boolPtr := func(v bool) *bool { return &v }

	t.Run("procedure without a code is flagged", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.LineItems = append(in.Invoice.LineItems, models.LineItem{
			Name: "Appendectomy", Type: "procedure", Date: "2024-01-12", Units: 1, UnitPrice: 0, TotalPrice: 0,
		})
		in.Invoice.TotalClaimed = 500

		findings, score := engine.Reconcile(context.Background(), in)

		var codeFindings []models.Discrepancy
		for _, f := range findings {
			if f.Category == "codes" {
				codeFindings = append(codeFindings, f)
			}
		}
		if assert.Len(t, codeFindings, 1) {
			assert.Contains(t, codeFindings[0].Description, "without a procedure code")
		}
		assert.Less(t, score.PerCategoryScore["line_items"], 100.0)
	})

	t.Run("coded procedure with a valid verdict passes", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.LineItems = append(in.Invoice.LineItems, models.LineItem{
			Name: "Appendectomy", Code: "SURG-APP", CodeValid: boolPtr(true),
			Type: "procedure", Date: "2024-01-12", Units: 1, UnitPrice: 0, TotalPrice: 0,
		})
		in.Invoice.TotalClaimed = 500

		findings, score := engine.Reconcile(context.Background(), in)

		assert.Empty(t, findings)
		assert.Equal(t, 100.0, score.PerCategoryScore["line_items"])
	})

	t.Run("invalid code verdict is flagged on any item type", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.LineItems[0].Code = "XYZ-1"
		in.Invoice.LineItems[0].CodeValid = boolPtr(false)

		findings, _ := engine.Reconcile(context.Background(), in)

		if assert.Len(t, findings, 1) {
			assert.Equal(t, "codes", findings[0].Category)
			assert.Contains(t, findings[0].Description, "does not look valid")
		}
	})
}

func TestReconcileReportDateDelta(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())

	t.Run("report dated far from the invoice is flagged", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.InvoiceDate = "2024-01-15"
		in.ReportDates = map[string]string{"cbc": "2023-10-01"}

		findings, score := engine.Reconcile(context.Background(), in)

		if assert.Len(t, findings, 1) {
			assert.Equal(t, "reports", findings[0].Category)
			assert.Contains(t, findings[0].Description, "days from the invoice")
		}
		assert.Less(t, score.PerCategoryScore["reports"], 100.0)
	})

	t.Run("report dated near the invoice passes", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.InvoiceDate = "2024-01-15"
		in.ReportDates = map[string]string{"CBC": "2024-01-12"}

		findings, score := engine.Reconcile(context.Background(), in)

		assert.Empty(t, findings)
		assert.Equal(t, 100.0, score.PerCategoryScore["reports"])
	})

	t.Run("no report date skips the delta check", func(t *testing.T) {
		in := cleanInput()
		in.Invoice.InvoiceDate = "2024-01-15"

		findings, score := engine.Reconcile(context.Background(), in)

		assert.Empty(t, findings)
		assert.Equal(t, 100.0, score.PerCategoryScore["reports"])
	})
}

func TestReconcileBirthDateCompared(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())

	t.Run("mismatched birth dates raise a finding", func(t *testing.T) {
		in := cleanInput()
		in.CaseContext.Patient.DateOfBirth = "1980-05-01"
		in.Invoice.Patient.DateOfBirth = "1981-05-01"

		findings, score := engine.Reconcile(context.Background(), in)

		if assert.Len(t, findings, 1) {
			assert.Contains(t, findings[0].Description, "date of birth")
			assert.Equal(t, "invoice", findings[0].Source)
		}
		assert.Less(t, score.PerCategoryScore["patient_details"], 100.0)
	})

	t.Run("same day in different formats matches", func(t *testing.T) {
		in := cleanInput()
		in.CaseContext.Patient.DateOfBirth = "1980-05-01"
		in.Invoice.Patient.DateOfBirth = "01/05/1980"

		findings, _ := engine.Reconcile(context.Background(), in)

		assert.Empty(t, findings)
	})

	t.Run("approval letter birth date is checked too", func(t *testing.T) {
		in := cleanInput()
		in.CaseContext.Patient.DateOfBirth = "1980-05-01"
		in.Approval = models.ApprovalRecord{
			Found:          true,
			ApprovedAmount: 500,
			AmountMatch:    true,
			Patient:        models.PatientIdentity{Name: "John Smith", DateOfBirth: "1979-05-01"},
		}

		findings, _ := engine.Reconcile(context.Background(), in)

		if assert.Len(t, findings, 1) {
			assert.Equal(t, "approval", findings[0].Source)
			assert.Contains(t, findings[0].Description, "date of birth")
		}
	})
}

func TestReconcileInvoiceAndApprovalNamesComparedWithoutClinicalRecord(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())
	in := cleanInput()
	in.CaseContext.Patient = models.PatientIdentity{}
	in.Approval = models.ApprovalRecord{
		Found:          true,
		ApprovedAmount: 500,
		AmountMatch:    true,
		Patient:        models.PatientIdentity{Name: "Jane Doe"},
	}

	findings, _ := engine.Reconcile(context.Background(), in)

	if assert.Len(t, findings, 1) {
		assert.Equal(t, "patient_details", findings[0].Category)
		assert.Contains(t, findings[0].Description, "does not match the invoice")
	}
}

func TestReconcileApprovalIDNotComparedToHospitalID(t *testing.T) {
	engine := NewReconciliationEngine(&fakeTariffRepo{}, 80, zap.NewNop())
	in := cleanInput()
	in.Approval = models.ApprovalRecord{
		Found:          true,
		ApprovedAmount: 500,
		AmountMatch:    true,
		Patient:        models.PatientIdentity{Name: "John Smith", PatientID: "POLICY-42"},
	}

	findings, score := engine.Reconcile(context.Background(), in)

	assert.Empty(t, findings, "payer side member id must not be checked against hospital ids")
	assert.True(t, score.Passed)
}

func TestFilterDiscrepancies(t *testing.T) {
	findings := []models.Discrepancy{
		{Category: "dates", Severity: "high", Description: "dup", Source: "invoice"},
		{Category: "dates", Severity: "high", Description: "dup", Source: "invoice"},
		{Category: "dates", Severity: "low"},
		{Category: "reports", Severity: "high", Description: "dup", Source: "reports"},
	}

	out := filterDiscrepancies(findings)

	assert.Len(t, out, 2, "duplicates collapse and empty findings drop")
}

func TestSeverityCounts(t *testing.T) {
	counts := SeverityCounts([]models.Discrepancy{
		{Severity: "high"}, {Severity: "high"}, {Severity: "low"},
	})
	assert.Equal(t, 2, counts["high"])
	assert.Equal(t, 0, counts["medium"])
	assert.Equal(t, 1, counts["low"])
}
