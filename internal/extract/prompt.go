package extract

import "strings"

// promptTemplate is shared by both tiers. {{TEXT}} is replaced verbatim.
const promptTemplate = `你是一个专业的考勤核对助手。请从乱序文本中提取所有中国人的姓名。
严格清洗规则：
1. 去除名字中间或周围的数字、空格、标点、表情（如 '刘骐1豪' -> '刘骐豪'）。
2. 忽略非人名文本（如'已完成'、'截图'）。
3. 仅返回 JSON 字符串数组，不要Markdown格式。
待处理文本：
{{TEXT}}`

// BuildPrompt returns the extraction prompt for rawText.
func BuildPrompt(rawText string) string {
	return strings.Replace(promptTemplate, "{{TEXT}}", rawText, 1)
}
