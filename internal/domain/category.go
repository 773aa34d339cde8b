package domain

// Category is the closed set of topic labels an article can carry.
type Category string

const (
	CategoryAIML        Category = "ai-ml"
	CategorySecurity    Category = "security"
	CategoryEngineering Category = "engineering"
	CategoryTools       Category = "tools"
	CategoryOpinion     Category = "opinion"
	CategoryOther       Category = "other"
)

// CategoryInfo holds the static display data of a category.
type CategoryInfo struct {
	Emoji   string
	LabelZh string
	LabelEn string
}

// Label returns the display label for the given language ("zh" or "en").
func (c CategoryInfo) Label(lang string) string {
	if lang == "en" {
		return c.LabelEn
	}
	return c.LabelZh
}

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryAIML,
	CategorySecurity,
	CategoryEngineering,
	CategoryTools,
	CategoryOpinion,
	CategoryOther,
}

// CategoryMeta is the static lookup table for category display data.
var CategoryMeta = map[Category]CategoryInfo{
	CategoryAIML:        {Emoji: "🤖", LabelZh: "AI / ML", LabelEn: "AI / ML"},
	CategorySecurity:    {Emoji: "🔒", LabelZh: "安全", LabelEn: "Security"},
	CategoryEngineering: {Emoji: "⚙️", LabelZh: "工程", LabelEn: "Engineering"},
	CategoryTools:       {Emoji: "🛠", LabelZh: "工具 / 开源", LabelEn: "Tools / Open Source"},
	CategoryOpinion:     {Emoji: "💡", LabelZh: "观点 / 杂谈", LabelEn: "Opinion"},
	CategoryOther:       {Emoji: "📝", LabelZh: "其他", LabelEn: "Other"},
}

// ParseCategory maps a model-supplied label onto the closed set; anything
// unknown becomes CategoryOther.
func ParseCategory(value string) Category {
	c := Category(value)
	if _, ok := CategoryMeta[c]; ok {
		return c
	}
	return CategoryOther
}

// Info returns the display data, defaulting to CategoryOther.
func (c Category) Info() CategoryInfo {
	if info, ok := CategoryMeta[c]; ok {
		return info
	}
	return CategoryMeta[CategoryOther]
}
