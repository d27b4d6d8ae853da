package state

import "slices"

// DialogKind names a modal dialog.
type DialogKind string

const (
	DialogNone            DialogKind = "none"
	DialogCommand         DialogKind = "command"
	DialogHelp            DialogKind = "help"
	DialogConversations   DialogKind = "conversations"
	DialogTheme           DialogKind = "theme"
	DialogExport          DialogKind = "export"
	DialogStash           DialogKind = "stash"
	DialogAgent           DialogKind = "agent"
	DialogModel           DialogKind = "model"
	DialogDatasources     DialogKind = "datasources"
	DialogAddDatasource   DialogKind = "add_datasource"
	DialogNotebooks       DialogKind = "notebooks"
	DialogNewNotebookName DialogKind = "new_notebook_name"
)

// Dialog is the open modal. Each kind carries its own selection state so that
// state cannot outlive the dialog.
type Dialog interface {
	Kind() DialogKind
}

type (
	CommandDialog struct {
		Search   string
		Selected int
	}
	HelpDialog            struct{}
	ConversationsDialog   struct{ Selected int }
	ThemeDialog           struct{ Selected int }
	ExportDialog          struct{}
	StashDialog           struct{ Selected int }
	AgentDialog           struct{ Selected int }
	ModelDialog           struct{ Selected int }
	DatasourcesDialog     struct{ Selected int }
	NotebooksDialog       struct{ Selected int }
	NewNotebookNameDialog struct{ Input string }
)

func (CommandDialog) Kind() DialogKind         { return DialogCommand }
func (HelpDialog) Kind() DialogKind            { return DialogHelp }
func (ConversationsDialog) Kind() DialogKind   { return DialogConversations }
func (ThemeDialog) Kind() DialogKind           { return DialogTheme }
func (ExportDialog) Kind() DialogKind          { return DialogExport }
func (StashDialog) Kind() DialogKind           { return DialogStash }
func (AgentDialog) Kind() DialogKind           { return DialogAgent }
func (ModelDialog) Kind() DialogKind           { return DialogModel }
func (DatasourcesDialog) Kind() DialogKind     { return DialogDatasources }
func (AddDatasourceDialog) Kind() DialogKind   { return DialogAddDatasource }
func (NotebooksDialog) Kind() DialogKind       { return DialogNotebooks }
func (NewNotebookNameDialog) Kind() DialogKind { return DialogNewNotebookName }

// AddDatasourceStep is the page of the add-datasource wizard.
type AddDatasourceStep string

const (
	StepType AddDatasourceStep = "type"
	StepForm AddDatasourceStep = "form"
)

// TestStatus tracks a connection test started from the add-datasource form.
type TestStatus string

const (
	TestIdle    TestStatus = "idle"
	TestPending TestStatus = "pending"
	TestOK      TestStatus = "ok"
	TestError   TestStatus = "error"
)

// Rows of the add-datasource form.
const (
	FormRowName = iota
	FormRowConnection
	FormRowTest
	FormRowCreate
	FormRowCancel
	formRows
)

// AddDatasourceDialog is the two-step wizard: pick a provider, then fill in a
// name and connection string.
type AddDatasourceDialog struct {
	Step AddDatasourceStep

	// TypeIDs and TypeNames are loaded by the shell after the dialog opens.
	TypeIDs      []string
	TypeNames    []string
	TypeSelected int
	TypeID       string

	Name         string
	Connection   string
	FormSelected int

	ValidationError string
	TestStatus      TestStatus
	TestMessage     string
	// TestRequested asks the shell to run a connection test.
	TestRequested bool
}

// TypeName returns the display name of the chosen provider.
func (d AddDatasourceDialog) TypeName() string {
	if i := slices.Index(d.TypeIDs, d.TypeID); i >= 0 && i < len(d.TypeNames) {
		return d.TypeNames[i]
	}
	return d.TypeID
}

func newAddDatasourceDialog() AddDatasourceDialog {
	return AddDatasourceDialog{Step: StepType, TestStatus: TestIdle}
}

// newDialog builds a freshly opened dialog of the given kind. Selections start
// at zero, except the theme list which starts on the current theme.
func newDialog(kind DialogKind, s AppState) Dialog {
	switch kind {
	case DialogCommand:
		return CommandDialog{}
	case DialogHelp:
		return HelpDialog{}
	case DialogConversations:
		return ConversationsDialog{}
	case DialogTheme:
		return ThemeDialog{Selected: max(0, slices.Index(ThemeIDs, s.ThemeID))}
	case DialogExport:
		return ExportDialog{}
	case DialogStash:
		return StashDialog{}
	case DialogAgent:
		return AgentDialog{}
	case DialogModel:
		return ModelDialog{}
	case DialogDatasources:
		return DatasourcesDialog{}
	case DialogAddDatasource:
		return newAddDatasourceDialog()
	case DialogNotebooks:
		return NotebooksDialog{}
	case DialogNewNotebookName:
		return NewNotebookNameDialog{Input: UntitledNotebook}
	}
	return nil
}
