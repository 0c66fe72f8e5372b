package prompts

const (
	DefaultCategory = "General Writing"
	DefaultTarget   = "Default (Gemini)"
)

// Categories a prompt can be filed under.
var Categories = []string{
	"General Writing",
	"Code Generation",
	"Creative Content",
	"Business",
	"Educational",
	"Roleplay",
	"Data Analysis",
}

// Target is a model or tool a prompt is written for.
type Target struct {
	Name         string
	Instructions string
}

var Targets = []Target{
	{Name: DefaultTarget},
	{
		Name:         "GPT-4o",
		Instructions: "Pay special attention to structuring the prompt with clear headings (e.g., ## Context, ## Task) and step-by-step instructions, as this works well for GPT-4o.",
	},
	{
		Name:         "Claude 3 Sonnet",
		Instructions: "Enclose key instructions, examples, or context within XML tags (e.g., <instructions></instructions>, <example></example>), as this is a known best practice for Claude 3 models.",
	},
	{
		Name:         "Cursor",
		Instructions: "For Cursor, an AI code editor, suggestions should be action-oriented for code generation or modification. Think about specifying file context, language, and exact changes needed.",
	},
	{
		Name:         "Lovable",
		Instructions: "For Lovable, a user research AI, suggestions should focus on tasks like generating user interview questions, summarizing feedback, or creating user personas.",
	},
	{
		Name:         "Bolt",
		Instructions: "For Bolt, an AI tool for search and content creation, suggestions should optimize for clarity, conciseness, and specifying output formats (e.g., 'as a bulleted list').",
	},
}

// InstructionsFor returns the model-specific guidance for target, or "".
func InstructionsFor(target string) string {
	for _, t := range Targets {
		if t.Name == target {
			return t.Instructions
		}
	}
	return ""
}

// TargetNames lists the names of all targets in display order.
func TargetNames() []string {
	names := make([]string, len(Targets))
	for i, t := range Targets {
		names[i] = t.Name
	}
	return names
}

// ValidCategory reports whether name is one of Categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
