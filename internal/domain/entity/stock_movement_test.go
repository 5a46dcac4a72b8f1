package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

const (
	locA = "loc-a"
	locB = "loc-b"
	locC = "loc-c"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func movInput(qty string) entity.MovementInput {
	return entity.MovementInput{
		TenantID:    "tenant-1",
		Number:      "MOV-2025-000001",
		ItemID:      "item-1",
		Quantity:    decimal.RequireFromString(qty),
		UnitCost:    decimal.NewFromInt(10),
		Reason:      "compra",
		InitiatedBy: "user-1",
	}
}

// approver devuelve un helper que aprueba el movimiento si quedó pendiente.
func approver(t *testing.T) func(*entity.StockMovement, error) *entity.StockMovement {
	return func(m *entity.StockMovement, err error) *entity.StockMovement {
		t.Helper()
		require.NoError(t, err)
		if m.Status == entity.MovementStatusPending {
			require.NoError(t, m.Approve("approver", testNow))
		}
		return m
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Fábricas
// ──────────────────────────────────────────────────────────────────────────────

func TestNewMovement_CantidadNoPositiva_Falla(t *testing.T) {
	for _, qty := range []string{"0", "-1", "-0.5"} {
		_, err := entity.NewInMovement(movInput(qty), locA, false, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "qty=%s", qty)

		_, err = entity.NewOutMovement(movInput(qty), locA, false, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "qty=%s", qty)

		_, err = entity.NewTransferMovement(movInput(qty), locA, locB, true, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "qty=%s", qty)

		_, err = entity.NewAdjustmentMovement(movInput(qty), locA, false, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "qty=%s", qty)
	}
}

func TestNewTransferMovement_MismaUbicacion_Falla(t *testing.T) {
	m, err := entity.NewTransferMovement(movInput("5"), locA, locA, true, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, m)
}

func TestNewMovement_SinMotivo_Falla(t *testing.T) {
	in := movInput("5")
	in.Reason = "   "
	_, err := entity.NewInMovement(in, locA, false, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewMovement_CostoNegativo_Falla(t *testing.T) {
	in := movInput("5")
	in.UnitCost = decimal.NewFromInt(-1)
	_, err := entity.NewOutMovement(in, locA, false, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewInMovement_AutoAprobado_RegistraIniciadorComoAprobador(t *testing.T) {
	m, err := entity.NewInMovement(movInput("100"), locA, false, testNow)
	require.NoError(t, err)

	assert.Equal(t, entity.MovementStatusApproved, m.Status)
	assert.Equal(t, "user-1", m.ApprovedBy)
	require.NotNil(t, m.ApprovedAt)
	assert.True(t, m.ApprovedAt.Equal(m.CreatedAt), "la aprobación usa el timestamp de creación")
	assert.Equal(t, locA, m.ToLocationID)
	assert.Empty(t, m.FromLocationID)
	assert.Equal(t, 1, m.Version)
}

func TestNewInMovement_ConAprobacion_QuedaPendiente(t *testing.T) {
	m, err := entity.NewInMovement(movInput("100"), locA, true, testNow)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, m.Status)
	assert.Empty(t, m.ApprovedBy)
	assert.Nil(t, m.ApprovedAt)
}

func TestNewAdjustmentMovement_SiemprePendiente(t *testing.T) {
	pos, err := entity.NewAdjustmentMovement(movInput("15"), locA, true, testNow)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, pos.Status)
	assert.True(t, pos.RequiresApproval)
	assert.Equal(t, locA, pos.ToLocationID)
	assert.Empty(t, pos.FromLocationID)

	neg, err := entity.NewAdjustmentMovement(movInput("15"), locA, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, neg.Status)
	assert.Equal(t, locA, neg.FromLocationID)
	assert.Empty(t, neg.ToLocationID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_DosVeces_SegundaFallaInvalidState(t *testing.T) {
	m, err := entity.NewOutMovement(movInput("5"), locA, true, testNow)
	require.NoError(t, err)

	require.NoError(t, m.Approve("boss", testNow))
	err = m.Approve("otro", testNow.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, "boss", m.ApprovedBy, "la segunda llamada no cambia nada")
}

func TestReject_RequiereMotivo(t *testing.T) {
	m, err := entity.NewOutMovement(movInput("5"), locA, true, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Reject("boss", " ", testNow), domain.ErrInvalidInput)
	assert.Equal(t, entity.MovementStatusPending, m.Status)

	require.NoError(t, m.Reject("boss", "sin soporte", testNow))
	assert.Equal(t, entity.MovementStatusRejected, m.Status)
	assert.Equal(t, "sin soporte", m.RejectionReason)
	assert.ErrorIs(t, m.Reject("boss", "otra vez", testNow), domain.ErrInvalidState)
}

func TestCancel_AgregaMotivoANotas(t *testing.T) {
	in := movInput("5")
	in.Notes = "nota original"
	m, err := entity.NewTransferMovement(in, locA, locB, true, testNow)
	require.NoError(t, err)

	require.NoError(t, m.Cancel("user-1", "error de digitación", testNow))
	assert.Equal(t, entity.MovementStatusCancelled, m.Status)
	assert.Contains(t, m.Notes, "nota original")
	assert.Contains(t, m.Notes, "error de digitación")
	assert.ErrorIs(t, m.Cancel("user-1", "x", testNow), domain.ErrInvalidState)
	assert.ErrorIs(t, m.Approve("boss", testNow), domain.ErrInvalidState)
}

func TestTransiciones_DesdeAprobado_Fallan(t *testing.T) {
	m, err := entity.NewInMovement(movInput("5"), locA, false, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Approve("x", testNow), domain.ErrInvalidState)
	assert.ErrorIs(t, m.Reject("x", "r", testNow), domain.ErrInvalidState)
	assert.ErrorIs(t, m.Cancel("x", "r", testNow), domain.ErrInvalidState)
	assert.True(t, m.IsTerminal())
}

// ──────────────────────────────────────────────────────────────────────────────
// GetEffectiveQuantity: tabla exhaustiva por tipo, estado y ubicación
// ──────────────────────────────────────────────────────────────────────────────

func TestGetEffectiveQuantity_NoAprobado_SiempreCero(t *testing.T) {
	build := []func() (*entity.StockMovement, error){
		func() (*entity.StockMovement, error) { return entity.NewInMovement(movInput("7"), locA, true, testNow) },
		func() (*entity.StockMovement, error) { return entity.NewOutMovement(movInput("7"), locA, true, testNow) },
		func() (*entity.StockMovement, error) {
			return entity.NewTransferMovement(movInput("7"), locA, locB, true, testNow)
		},
		func() (*entity.StockMovement, error) { return entity.NewAdjustmentMovement(movInput("7"), locA, true, testNow) },
	}
	finish := map[string]func(m *entity.StockMovement){
		entity.MovementStatusPending:   func(*entity.StockMovement) {},
		entity.MovementStatusRejected:  func(m *entity.StockMovement) { require.NoError(t, m.Reject("b", "r", testNow)) },
		entity.MovementStatusCancelled: func(m *entity.StockMovement) { require.NoError(t, m.Cancel("b", "r", testNow)) },
	}
	for status, fn := range finish {
		for _, b := range build {
			m, err := b()
			require.NoError(t, err)
			fn(m)
			require.Equal(t, status, m.Status)
			for _, loc := range []string{locA, locB, locC, ""} {
				assert.True(t, m.GetEffectiveQuantity(loc).IsZero(), "%s %s en %q", m.Type, status, loc)
			}
		}
	}
}

func TestGetEffectiveQuantity_Aprobado(t *testing.T) {
	seven := decimal.NewFromInt(7)
	minus := seven.Neg()
	zero := decimal.Zero
	approved := approver(t)

	in := approved(entity.NewInMovement(movInput("7"), locA, false, testNow))
	out := approved(entity.NewOutMovement(movInput("7"), locA, false, testNow))
	tr := approved(entity.NewTransferMovement(movInput("7"), locA, locB, true, testNow))
	adjPos := approved(entity.NewAdjustmentMovement(movInput("7"), locA, true, testNow))
	adjNeg := approved(entity.NewAdjustmentMovement(movInput("7"), locA, false, testNow))

	cases := []struct {
		name string
		m    *entity.StockMovement
		loc  string
		want decimal.Decimal
	}{
		{"in en destino", in, locA, seven},
		{"in ignora argumento", in, locB, seven},
		{"out en origen", out, locA, minus},
		{"out ignora argumento", out, locC, minus},
		{"transfer en destino", tr, locB, seven},
		{"transfer en origen", tr, locA, minus},
		{"transfer en otra", tr, locC, zero},
		{"transfer sin ubicación", tr, "", zero},
		{"ajuste positivo en su ubicación", adjPos, locA, seven},
		{"ajuste positivo en otra", adjPos, locB, zero},
		{"ajuste positivo sin ubicación", adjPos, "", zero},
		{"ajuste negativo en su ubicación", adjNeg, locA, minus},
		{"ajuste negativo en otra", adjNeg, locB, zero},
		{"ajuste negativo sin ubicación", adjNeg, "", zero},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.m.GetEffectiveQuantity(tc.loc)
			assert.True(t, tc.want.Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestDecreasesStockAt(t *testing.T) {
	in, _ := entity.NewInMovement(movInput("1"), locA, false, testNow)
	out, _ := entity.NewOutMovement(movInput("1"), locA, false, testNow)
	tr, _ := entity.NewTransferMovement(movInput("1"), locA, locB, true, testNow)
	adjPos, _ := entity.NewAdjustmentMovement(movInput("1"), locA, true, testNow)
	adjNeg, _ := entity.NewAdjustmentMovement(movInput("1"), locB, false, testNow)

	assert.Empty(t, in.DecreasesStockAt())
	assert.Equal(t, locA, out.DecreasesStockAt())
	assert.Equal(t, locA, tr.DecreasesStockAt())
	assert.Empty(t, adjPos.DecreasesStockAt())
	assert.Equal(t, locB, adjNeg.DecreasesStockAt())
}

func TestTotalValue_UsaCostoCongelado(t *testing.T) {
	in := movInput("3")
	in.UnitCost = decimal.RequireFromString("2.5")
	m, err := entity.NewInMovement(in, locA, false, testNow)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.5").Equal(m.TotalValue()))
	assert.ElementsMatch(t, []string{locA}, m.Locations())
	assert.True(t, m.Touches(locA))
	assert.False(t, m.Touches(locB))
}
