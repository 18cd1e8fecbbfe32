package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/llm"
	"github.com/comparo/backend/internal/infrastructure/log"
	"github.com/comparo/backend/internal/infrastructure/tokens"
)

// DefaultPersona 助手人设（系统消息）
const DefaultPersona = `Tu es l'assistant virtuel du comparateur de forfaits mobiles, de box internet et de téléphones.
Ton rôle est d'aider les visiteurs à comprendre les offres et à utiliser le comparateur.
Faits utiles :
- Le comparateur est gratuit et indépendant des opérateurs.
- Il couvre les forfaits mobiles (avec ou sans engagement, 4G/5G), les box internet (fibre, ADSL, 4G) et les téléphones.
- Les prix affichés sont indicatifs et peuvent évoluer.
Règles :
- Réponds toujours en français, de façon claire, concise et bienveillante.
- Tu ne peux effectuer aucune action transactionnelle : pas de souscription, de résiliation, de paiement ni de modification de compte. Dans ce cas, redirige l'utilisateur vers le comparateur et vers le site de l'opérateur concerné.
- Si tu ne connais pas la réponse, dis-le et propose d'utiliser les filtres du comparateur.`

// ContextIntro 上下文系统消息的开头
const ContextIntro = "Voici des informations de référence issues de notre base de connaissances pour t'aider à répondre à l'utilisateur :"

// AntiRepetitionDirective 防重复指令
const AntiRepetitionDirective = "Tu as déjà répondu à des questions proches dans cette conversation. Formule ta réponse différemment de tes réponses précédentes, même si le contenu se recoupe."

// PromptInput 组装提示词所需的输入
type PromptInput struct {
	Persona          string
	PriorTurns       []*chat.Message
	NewUserText      string
	ContextDocuments []*knowledge.ScoredDocument
	AntiRepetition   bool
}

// PromptAssembler 构建发给模型的消息列表
type PromptAssembler struct {
	maxHistoryTokens int
	logger           *slog.Logger
}

// NewPromptAssembler 创建组装器，MaxHistoryTokens 为 0 时不限制历史长度
func NewPromptAssembler(cfg *config.RAGConfig) *PromptAssembler {
	a := &PromptAssembler{logger: log.NewModuleLogger("rag", "prompt")}
	if cfg != nil && cfg.MaxHistoryTokens > 0 {
		a.maxHistoryTokens = cfg.MaxHistoryTokens
	}
	return a
}

// Assemble 顺序固定：人设 → 上下文（有文档时）→ 历史 → 防重复指令（需要时）→ 新的用户消息
func (a *PromptAssembler) Assemble(in PromptInput) []llm.Message {
	persona := in.Persona
	if persona == "" {
		persona = DefaultPersona
	}

	messages := make([]llm.Message, 0, len(in.PriorTurns)+4)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: persona})

	if len(in.ContextDocuments) > 0 {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: FormatContext(in.ContextDocuments)})
	}

	messages = append(messages, a.history(in.PriorTurns)...)

	if in.AntiRepetition {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: AntiRepetitionDirective})
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: in.NewUserText})
	return messages
}

// history 映射历史消息，超出 token 预算时丢弃最早的轮次
func (a *PromptAssembler) history(prior []*chat.Message) []llm.Message {
	out := make([]llm.Message, 0, len(prior))
	for _, m := range prior {
		role := llm.RoleUser
		if m.IsBot() {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Text})
	}

	if a.maxHistoryTokens <= 0 || len(out) == 0 {
		return out
	}
	est, err := tokens.GetEstimator()
	if err != nil {
		a.logger.Warn("Token estimator unavailable, history not truncated", "error", err)
		return out
	}

	total := 0
	counts := make([]int, len(out))
	for i, m := range out {
		counts[i] = est.CountMessage(m)
		total += counts[i]
	}
	drop := 0
	for total > a.maxHistoryTokens && drop < len(out) {
		total -= counts[drop]
		drop++
	}
	if drop > 0 {
		a.logger.Debug("History truncated", "dropped_turns", drop, "tokens", total)
	}
	return out[drop:]
}

// FormatContext 上下文系统消息：说明行加上 "Document: <title>\n<content>" 块，块之间空行分隔
func FormatContext(docs []*knowledge.ScoredDocument) string {
	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, "Document: "+d.Title()+"\n"+d.Content)
	}
	return ContextIntro + "\n\n" + strings.Join(blocks, "\n\n")
}

// HistoryFingerprint 会话已有机器人回答时返回非空标识，否则返回空字符串
func HistoryFingerprint(prior []*chat.Message) string {
	h := sha256.New()
	answered := false
	for _, m := range prior {
		if m.IsBot() {
			answered = true
			h.Write([]byte(m.ID))
		}
	}
	if !answered {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ExcerptRunes 文档引用摘要长度
const ExcerptRunes = 150

// References 把检索结果转为消息中的文档引用
func References(docs []*knowledge.ScoredDocument) []chat.DocumentReference {
	if len(docs) == 0 {
		return nil
	}
	refs := make([]chat.DocumentReference, 0, len(docs))
	for _, d := range docs {
		excerpt := []rune(d.Content)
		if len(excerpt) > ExcerptRunes {
			excerpt = excerpt[:ExcerptRunes]
		}
		refs = append(refs, chat.DocumentReference{
			ID:      d.ID,
			Title:   d.Title(),
			Excerpt: string(excerpt),
		})
	}
	return refs
}
