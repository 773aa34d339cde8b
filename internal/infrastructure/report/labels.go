package report

// labels is the fixed vocabulary of one report language.
type labels struct {
	title        string
	subtitle     string // args: feeds, selected
	highlights   string
	mustRead     string
	whyRead      string
	overview     string
	tableHeader  string
	articleUnit  string
	categoryDist string
	keywords     string
	keywordAxis  string
	asciiSummary string
	tags         string
	footer       string // args: date, time, sources, fetched, selected
	minutesAgo   string
	hoursAgo     string
	daysAgo      string
}

var labelSets = map[string]labels{
	"zh": {
		title:        "📰 AI 博客每日精选",
		subtitle:     "来自 %d 个技术博客，AI 精选 Top %d",
		highlights:   "📝 今日看点",
		mustRead:     "🏆 今日必读",
		whyRead:      "💡 **为什么值得读**",
		overview:     "📊 数据概览",
		tableHeader:  "| 扫描源 | 抓取文章 | 时间范围 | 精选 |",
		articleUnit:  " 篇",
		categoryDist: "分类分布",
		keywords:     "高频关键词",
		keywordAxis:  "出现次数",
		asciiSummary: "📈 纯文本关键词图（终端友好）",
		tags:         "🏷️ 话题标签",
		footer:       "*生成于 %s %s | 扫描 %d 源 → 获取 %d 篇 → 精选 %d 篇*",
		minutesAgo:   "%d 分钟前",
		hoursAgo:     "%d 小时前",
		daysAgo:      "%d 天前",
	},
	"en": {
		title:        "📰 Daily Tech Blog Digest",
		subtitle:     "Curated from %d tech blogs, AI-picked top %d",
		highlights:   "📝 Today's Highlights",
		mustRead:     "🏆 Must Reads",
		whyRead:      "💡 **Why read it**",
		overview:     "📊 Overview",
		tableHeader:  "| Sources | Articles | Window | Selected |",
		articleUnit:  "",
		categoryDist: "Categories",
		keywords:     "Top Keywords",
		keywordAxis:  "Mentions",
		asciiSummary: "📈 Plain-text keyword chart (terminal friendly)",
		tags:         "🏷️ Topics",
		footer:       "*Generated %s %s | %d sources → %d articles → %d selected*",
		minutesAgo:   "%d min ago",
		hoursAgo:     "%d h ago",
		daysAgo:      "%d days ago",
	},
}

func labelsFor(lang string) labels {
	if l, ok := labelSets[lang]; ok {
		return l
	}
	return labelSets["zh"]
}
