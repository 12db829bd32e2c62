package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caudal/internal/repository"
	"caudal/internal/service"
	"caudal/internal/testutil"
)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	db := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(db)

	clientRepo := repository.NewSQLiteClientRepo(db)
	procedureRepo := repository.NewSQLiteProcedureRepo(db)
	stepRepo := repository.NewSQLiteStepRepo(db)
	proposalRepo := repository.NewSQLiteProposalRepo(db)
	milestoneRepo := repository.NewSQLiteMilestoneRepo(db)
	expenseRepo := repository.NewSQLiteExpenseRepo(db)
	todoRepo := repository.NewSQLiteTodoRepo(db)
	waterRightRepo := repository.NewSQLiteWaterRightRepo(db)
	ufRateRepo := repository.NewSQLiteUFRateRepo(db)

	return &App{
		Clients: service.NewClientService(clientRepo, procedureRepo, proposalRepo, uow),
		Procedures: service.NewProcedureService(clientRepo, procedureRepo, stepRepo,
			milestoneRepo, expenseRepo, todoRepo, waterRightRepo, uow),
		Proposals: service.NewProposalService(clientRepo, procedureRepo, proposalRepo, milestoneRepo, ufRateRepo, uow),
		Board:     service.NewBoardService(procedureRepo, stepRepo),
		UF:        service.NewUFService(ufRateRepo),
		Import:    service.NewImportService(uow),

		IsInteractive: func() bool { return false },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestClienteNuevoYLista(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "Agrícola Los Sauces")
	require.NoError(t, err)
	assert.Contains(t, out, "Cliente creado exitosamente.")

	out, err = executeCmd(t, app, "cliente", "lista")
	require.NoError(t, err)
	assert.Contains(t, out, "Agrícola Los Sauces")
	assert.Contains(t, out, "12345678-5")
}

func TestClienteNuevo_RUTInvalido(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12.345.678-5", "--nombre", "X")
	require.Error(t, err)
	assert.Contains(t, out, "RUT con formato inválido.")
}

func TestClienteNuevo_RUTDuplicado(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "Primero")
	require.NoError(t, err)
	out, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "Segundo")
	require.Error(t, err)
	assert.Contains(t, out, "RUT ya registrado.")
}

func TestGestionNuevaYVer(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "Cliente CLI")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "gestion", "nueva", "--cliente", "1", "--tipo", "ADM_CPA", "--titulo", "CPA Pozo Norte")
	require.NoError(t, err)
	assert.Contains(t, out, "Gestión creada exitosamente.")

	out, err = executeCmd(t, app, "gestion", "ver", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "CPA POZO NORTE")
	assert.Contains(t, out, "Recopilación de antecedentes")
	assert.Contains(t, out, "Resolución final")
}

func TestGestionNueva_ClienteYGestionJuntos(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "gestion", "nueva",
		"--rut", "12345678-5", "--nombre", "Nuevo Con Gestión", "--tipo", "ADM_CPA")
	require.NoError(t, err)
	assert.Contains(t, out, "Cliente y gestión creados exitosamente.")

	clients, err := app.Clients.List(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
}

func TestGestionNueva_RegionInvalida(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "C")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "gestion", "nueva", "--cliente", "1", "--tipo", "ADM_CPA", "--region", "Narnia")
	require.Error(t, err)

	_, err = executeCmd(t, app, "gestion", "nueva", "--cliente", "1", "--tipo", "ADM_CPA",
		"--region", "Maule", "--provincia", "Elqui")
	require.Error(t, err)

	_, err = executeCmd(t, app, "gestion", "nueva", "--cliente", "1", "--tipo", "ADM_CPA",
		"--region", "Maule", "--provincia", "Talca")
	require.NoError(t, err)
}

func TestGestionPasoListoYEtapa(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "C")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "gestion", "nueva", "--cliente", "1", "--tipo", "ADM_TRASLADO")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "gestion", "paso", "listo", "1")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "gestion", "etapa", "1", "publicaciones")
	require.NoError(t, err)

	detail, err := app.Procedures.GetDetail(context.Background(), 1)
	require.NoError(t, err)
	done := 0
	for _, s := range detail.Steps {
		if s.Done {
			done++
		}
	}
	assert.Equal(t, 7, done)

	_, err = executeCmd(t, app, "gestion", "etapa", "1", "etapa_inexistente")
	require.Error(t, err)
}

func TestTableroEstado(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "Tablero SA")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "gestion", "nueva", "--cliente", "1", "--tipo", "ADM_CPA")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "tablero")
	require.NoError(t, err)
	assert.Contains(t, out, "PENDIENTE (1)")
	assert.Contains(t, out, "EN CURSO (0)")
	assert.Contains(t, out, "TERMINADA (0)")
	assert.Contains(t, out, "Tablero SA")
}

func TestTablero_ModoDesconocido(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "tablero", "--modo", "otro")
	require.Error(t, err)
}

func TestGestionLista_CategoriaOrdenYTags(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "Filtros SA")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "gestion", "nueva", "--cliente", "1", "--tipo", "ADM_CPA",
		"--tag", "#Prioridad", "--tag", "#Delegable")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "gestion", "nueva", "--cliente", "1", "--tipo", "JUD_OTRO")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "gestion", "lista", "--categoria", "ADMIN")
	require.NoError(t, err)
	assert.Contains(t, out, "Administrativo – CPA")
	assert.NotContains(t, out, "Judicial – Otro")

	out, err = executeCmd(t, app, "gestion", "lista", "--tag", "#Prioridad", "--tag", "#Delegable")
	require.NoError(t, err)
	assert.Contains(t, out, "Administrativo – CPA")
	assert.NotContains(t, out, "Judicial – Otro")

	out, err = executeCmd(t, app, "gestion", "lista", "--orden", "creacion_asc", "--limite", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Administrativo – CPA")

	_, err = executeCmd(t, app, "gestion", "lista", "--categoria", "NOTARIAL")
	require.Error(t, err)
	_, err = executeCmd(t, app, "gestion", "lista", "--orden", "alfabetico")
	require.Error(t, err)

	// Both gestiones are pending; the category narrows the column to one.
	out, err = executeCmd(t, app, "tablero", "--categoria", "JUDICIAL")
	require.NoError(t, err)
	assert.Contains(t, out, "PENDIENTE (1)")
}

func TestPropuestaHitosConsolidado(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "cliente", "nuevo", "--rut", "12345678-5", "--nombre", "Cliente Hitos")
	require.NoError(t, err)
	out, err := executeCmd(t, app, "propuesta", "nueva", "--cliente", "1", "--titulo", "Regularización", "--uf", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Propuesta creada exitosamente.")

	out, err = executeCmd(t, app, "propuesta", "hito", "agregar", "1", "--titulo", "Anticipo", "--uf", "30", "--plazo", "2026-08-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Hito creado exitosamente.")

	_, err = executeCmd(t, app, "uf", "valor", "38000", "--fecha", "2026-08-01")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "propuesta", "hitos")
	require.NoError(t, err)
	assert.Contains(t, out, "Anticipo")
	assert.Contains(t, out, "UF 30,00")
	assert.Contains(t, out, "$1.140.000")
}

func TestUFConvertir(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "uf", "valor", "38000,5", "--fecha", "2026-08-01")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "uf", "convertir", "2", "--fecha", "2026-08-10")
	require.NoError(t, err)
	assert.Contains(t, out, "UF 2,00")
	assert.Contains(t, out, "$76.001")
}

func TestGestionWizard_SinTerminal(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "gestion", "nueva", "-i")
	require.Error(t, err)
}

func TestImportar(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "respaldo.json")
	raw := `{
		"clients": [{
			"rut": "12345678-5",
			"name": "Agrícola Los Sauces",
			"proposals": [{
				"ref": "p1",
				"title": "Regularización pozo norte",
				"milestones": [{"title": "Anticipo", "fee_uf": "30"}]
			}],
			"procedures": [{
				"type": "CUSTOM",
				"title": "Pozo norte",
				"proposal_ref": "p1",
				"steps": [{"title": "Contrato firmado", "done": true}, {"title": "Expediente ingresado"}]
			}]
		}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	out, err := executeCmd(t, app, "importar", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Importación completada.")
	assert.Contains(t, out, "Clientes: 1")
	assert.Contains(t, out, "Pasos: 2")

	out, err = executeCmd(t, app, "cliente", "lista")
	require.NoError(t, err)
	assert.Contains(t, out, "Agrícola Los Sauces")
}

func TestImportar_SoloValidarReportaErrores(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "respaldo.json")
	raw := `{"clients": [{"rut": "malo", "name": "X", "procedures": [{"type": "CUSTOM", "steps": [{"title": "Paso"}]}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	out, err := executeCmd(t, app, "importar", path, "--solo-validar")
	require.Error(t, err)
	assert.Contains(t, out, "must match NNNNNNN-D")

	// Nothing was written.
	out, err = executeCmd(t, app, "cliente", "lista")
	require.NoError(t, err)
	assert.NotContains(t, out, "X")
}
