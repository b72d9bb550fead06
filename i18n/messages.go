package i18n

import "fmt"

// Card is a titled paragraph on the landing page.
type Card struct {
	Title string
	Body  string
}

// FAQ is one question/answer pair, also emitted as FAQPage structured data.
type FAQ struct {
	Question string
	Answer   string
}

// Messages is the localized copy for one language.
type Messages struct {
	SiteName          string
	Title             string
	Subtitle          string
	LatestTitle       string
	LatestSubtitle    string
	OpenclawTitle     string
	OpenclawSubtitle  string
	SearchPlaceholder string
	Search            string
	Loading           string
	Empty             string
	Error             string
	LoadMore          string
	PrevPage          string
	NextPage          string
	CountLabel        string
	BackToList        string
	ViewOnGitHub      string
	PVLabel           string
	UVLabel           string
	LanguageLabel     string
	English           string
	Chinese           string
	HomeLabel         string
	LatestLabel       string
	OpenclawLabel     string
	NotFoundTitle     string
	NotFoundBody      string

	DetailOverview      string
	DetailRepoInfo      string
	DetailSummary       string
	DetailKeyFeatures   string
	DetailUseCases      string
	DetailTopics        string
	DetailStars         string
	DetailForks         string
	DetailLanguage      string
	DetailLastPushed    string
	DetailLastSynced    string
	DetailOwner         string
	DetailRepo          string
	DetailFullName      string
	DetailRepoID        string
	DetailGitHub        string
	DetailUnknown       string
	DetailNoDescription string
	DetailNoTopics      string
	DetailOriginal      string
	DetailTranslated    string
	DetailSource        string
	DetailFallbackDesc  string
	DetailUnavailable   string

	TopicHeading    string
	LanguageHeading string
	OwnerHeading    string

	InfoTitle    string
	InfoSubtitle string
	InfoCards    []Card
	FAQTitle     string
	FAQItems     []FAQ
}

var catalog = map[Language]Messages{
	Chinese: {
		SiteName:          "AgentSkill Hub",
		Title:             "AgentSkill Hub",
		Subtitle:          "自动汇总 GitHub 上热门 Claude Skill 项目，集中展示与搜索。",
		LatestTitle:       "最新 Claude Skill 项目",
		LatestSubtitle:    "按收录时间查看最近加入的 Claude Skill 项目。",
		OpenclawTitle:     "OpenClaw 技能合集",
		OpenclawSubtitle:  "汇总与 OpenClaw 相关的 Claude Skill 项目。",
		SearchPlaceholder: "按名称、仓库、描述搜索...",
		Search:            "搜索",
		Loading:           "加载中...",
		Empty:             "暂无结果",
		Error:             "加载失败",
		LoadMore:          "加载更多",
		PrevPage:          "上一页",
		NextPage:          "下一页",
		CountLabel:        "显示",
		BackToList:        "返回列表",
		ViewOnGitHub:      "前往 GitHub",
		PVLabel:           "PV",
		UVLabel:           "UV",
		LanguageLabel:     "语言",
		English:           "English",
		Chinese:           "中文",
		HomeLabel:         "首页",
		LatestLabel:       "最新",
		OpenclawLabel:     "OpenClaw",
		NotFoundTitle:     "页面不存在",
		NotFoundBody:      "找不到你要访问的页面。",

		DetailOverview:      "概览",
		DetailRepoInfo:      "仓库信息",
		DetailSummary:       "简介",
		DetailKeyFeatures:   "核心功能",
		DetailUseCases:      "使用场景",
		DetailTopics:        "话题",
		DetailStars:         "Star",
		DetailForks:         "Fork",
		DetailLanguage:      "语言",
		DetailLastPushed:    "最近推送",
		DetailLastSynced:    "最近同步",
		DetailOwner:         "所有者",
		DetailRepo:          "仓库",
		DetailFullName:      "完整名称",
		DetailRepoID:        "仓库 ID",
		DetailGitHub:        "GitHub",
		DetailUnknown:       "未知",
		DetailNoDescription: "暂无描述。",
		DetailNoTopics:      "暂无话题。",
		DetailOriginal:      "原文",
		DetailTranslated:    "译文",
		DetailSource:        "数据来源：GitHub，最近同步于 ",
		DetailFallbackDesc:  "Claude Skill 项目详情",
		DetailUnavailable:   "项目详情暂不可用。",

		TopicHeading:    "话题",
		LanguageHeading: "编程语言",
		OwnerHeading:    "作者",

		InfoTitle:    "关于 AgentSkill Hub",
		InfoSubtitle: "我们持续追踪 GitHub 上的 Claude Skill 生态。",
		InfoCards: []Card{
			{Title: "自动收录", Body: "定期同步 GitHub 搜索结果，收录新的 Claude Skill 仓库。"},
			{Title: "双语描述", Body: "为每个项目提供中文与英文描述，方便快速了解。"},
			{Title: "多维浏览", Body: "按话题、编程语言和作者浏览项目。"},
		},
		FAQTitle: "常见问题",
		FAQItems: []FAQ{
			{Question: "什么是 Claude Skill？", Answer: "Claude Skill 是为 Claude 扩展能力的技能包，通常包含说明文件与脚本。"},
			{Question: "数据多久更新一次？", Answer: "项目列表每小时同步一次，详情信息每天刷新。"},
			{Question: "如何收录我的项目？", Answer: "在仓库描述或话题中加入 claude skill 相关关键词即可被自动发现。"},
		},
	},
	English: {
		SiteName:          "AgentSkill Hub",
		Title:             "AgentSkill Hub",
		Subtitle:          "Discover trending Claude Skill projects on GitHub, curated and searchable.",
		LatestTitle:       "Latest Claude Skill projects",
		LatestSubtitle:    "The most recently indexed Claude Skill repositories.",
		OpenclawTitle:     "OpenClaw skills",
		OpenclawSubtitle:  "Claude Skill projects related to OpenClaw.",
		SearchPlaceholder: "Search by name, repo, description...",
		Search:            "Search",
		Loading:           "Loading...",
		Empty:             "No skills found yet.",
		Error:             "Failed to load",
		LoadMore:          "Load more",
		PrevPage:          "Previous",
		NextPage:          "Next",
		CountLabel:        "Showing",
		BackToList:        "Back to list",
		ViewOnGitHub:      "View on GitHub",
		PVLabel:           "PV",
		UVLabel:           "UV",
		LanguageLabel:     "Language",
		English:           "English",
		Chinese:           "中文",
		HomeLabel:         "Home",
		LatestLabel:       "Latest",
		OpenclawLabel:     "OpenClaw",
		NotFoundTitle:     "Page not found",
		NotFoundBody:      "The page you are looking for does not exist.",

		DetailOverview:      "Overview",
		DetailRepoInfo:      "Repository",
		DetailSummary:       "Summary",
		DetailKeyFeatures:   "Key features",
		DetailUseCases:      "Use cases",
		DetailTopics:        "Topics",
		DetailStars:         "Stars",
		DetailForks:         "Forks",
		DetailLanguage:      "Language",
		DetailLastPushed:    "Last pushed",
		DetailLastSynced:    "Last synced",
		DetailOwner:         "Owner",
		DetailRepo:          "Repository",
		DetailFullName:      "Full name",
		DetailRepoID:        "Repo ID",
		DetailGitHub:        "GitHub",
		DetailUnknown:       "Unknown",
		DetailNoDescription: "No description yet.",
		DetailNoTopics:      "No topics yet.",
		DetailOriginal:      "Original",
		DetailTranslated:    "Translation",
		DetailSource:        "Source: GitHub, last synced ",
		DetailFallbackDesc:  "Claude Skill detail",
		DetailUnavailable:   "Skill detail is unavailable.",

		TopicHeading:    "Topic",
		LanguageHeading: "Language",
		OwnerHeading:    "Owner",

		InfoTitle:    "About AgentSkill Hub",
		InfoSubtitle: "We keep track of the Claude Skill ecosystem on GitHub.",
		InfoCards: []Card{
			{Title: "Automatic indexing", Body: "GitHub search results are synced regularly to pick up new Claude Skill repositories."},
			{Title: "Bilingual descriptions", Body: "Every project carries an English and a Chinese description."},
			{Title: "Browse by facet", Body: "Explore projects by topic, programming language and owner."},
		},
		FAQTitle: "FAQ",
		FAQItems: []FAQ{
			{Question: "What is a Claude Skill?", Answer: "A Claude Skill is a package of instructions and scripts that extends what Claude can do."},
			{Question: "How often is the data refreshed?", Answer: "Listings sync hourly and details refresh daily."},
			{Question: "How do I get my project listed?", Answer: "Mention claude skill in the repository description or topics and it will be discovered automatically."},
		},
	},
}

// For returns the copy for lang, falling back to the default language.
func For(lang Language) Messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog[Default]
}

// PageSuffix renders the " - Page N" title suffix.
func PageSuffix(lang Language, page int) string {
	if lang == Chinese {
		return fmt.Sprintf(" - 第 %d 页", page)
	}
	return fmt.Sprintf(" - Page %d", page)
}

// FacetIntro is the sentence under a facet heading.
func FacetIntro(lang Language, heading, value string) string {
	if lang == Chinese {
		return fmt.Sprintf("浏览%s “%s” 下的 Claude Skill 项目。", heading, value)
	}
	return fmt.Sprintf("Browse Claude Skill projects under the %s %q.", lowerFirst(heading), value)
}

// FacetDescription is the meta description of a facet page.
func FacetDescription(lang Language, heading, value string) string {
	if lang == Chinese {
		return fmt.Sprintf("查看与%s “%s” 相关的 Claude Skill 项目。", heading, value)
	}
	return fmt.Sprintf("Browse Claude Skill projects tagged with %s %q.", lowerFirst(heading), value)
}

// FacetHeading is the h1 and breadcrumb label of a facet page.
func FacetHeading(lang Language, heading, value string) string {
	if lang == Chinese {
		return heading + "：" + value
	}
	return heading + ": " + value
}

// FacetTitle is the document title of a facet page.
func FacetTitle(lang Language, heading, value string) string {
	if lang == Chinese {
		return fmt.Sprintf("%s：%s - Claude Skill - agentskill.work", heading, value)
	}
	return fmt.Sprintf("%s: %s - Claude Skill - agentskill.work", heading, value)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
