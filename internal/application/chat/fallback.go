package chat

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/comparo/backend/internal/infrastructure/log"
)

// RepetitionThreshold 最近两条用户消息的 Jaccard 相似度超过该值视为重复提问
const RepetitionThreshold = 0.7

// minSimilarityWordLen 参与相似度计算的最短词长（过滤 le、de、c 等虚词）
const minSimilarityWordLen = 3

// 固定回复
const (
	GenericMessage = "Je suis là pour vous aider à comparer les forfaits mobiles, les box internet et les téléphones. " +
		"Pouvez-vous préciser votre besoin : budget, quantité de data, type de connexion ou modèle de téléphone ?"

	RepetitionMessage = "Il me semble que je vous ai déjà répondu sur ce point. " +
		"Pour que je puisse vous aider davantage, pouvez-vous poser une question plus précise " +
		"(par exemple votre budget mensuel ou la quantité de data souhaitée) ?"
)

// fallbackRule 关键词规则，命中任一关键词即返回对应回答
type fallbackRule struct {
	name     string
	keywords []string
	answer   string
}

// 规则按顺序匹配，先命中者优先
var fallbackRules = []fallbackRule{
	{
		name:     "cheap_plan",
		keywords: []string{"pas cher", "moins cher", "economique", "economiques", "petit prix", "petits prix", "budget", "bon marche", "abordable", "prix bas"},
		answer: "Pour trouver un forfait pas cher, utilisez le filtre de prix du comparateur et triez les offres par prix croissant. " +
			"Les forfaits sans engagement des opérateurs à bas coût démarrent souvent à quelques euros par mois. " +
			"Vérifiez aussi le prix après la période promotionnelle.",
	},
	{
		name:     "data_volume",
		keywords: []string{"go", "giga", "gigas", "data", "donnees", "volume", "enveloppe"},
		answer: "La quantité de data dépend de votre usage : quelques Go suffisent pour les mails et la messagerie, " +
			"alors que le streaming vidéo demande souvent 50 Go ou plus. " +
			"Le comparateur vous permet de filtrer les forfaits par volume de data.",
	},
	{
		name:     "international",
		keywords: []string{"etranger", "international", "internationale", "roaming", "itinerance", "europe", "voyage", "voyager"},
		answer: "Pour un usage à l'étranger, regardez la data incluse en Europe et dans les DOM. " +
			"Hors Union européenne, certaines offres proposent des options internationales. " +
			"Le détail de chaque forfait est indiqué dans sa fiche sur le comparateur.",
	},
	{
		name:     "fiber_adsl",
		keywords: []string{"fibre", "adsl", "vdsl", "box", "debit", "eligibilite", "eligible"},
		answer: "La fibre offre des débits bien supérieurs à l'ADSL, mais elle n'est pas disponible partout. " +
			"Testez l'éligibilité de votre adresse puis comparez les box internet disponibles dans la rubrique dédiée.",
	},
	{
		name:     "tv",
		keywords: []string{"tv", "tele", "television", "chaines", "decodeur", "netflix"},
		answer: "Beaucoup de box internet incluent un décodeur TV et un bouquet de chaînes. " +
			"Dans le comparateur, filtrez les box avec TV pour voir les offres et les options de streaming.",
	},
	{
		name:     "commitment",
		keywords: []string{"engagement", "engage", "resiliation", "resilier", "duree"},
		answer: "La plupart des forfaits mobiles sont aujourd'hui sans engagement : vous pouvez changer quand vous voulez. " +
			"Les box internet sont souvent engagées 12 mois. La durée d'engagement est indiquée sur chaque offre.",
	},
	{
		name:     "brands",
		keywords: []string{"iphone", "samsung", "apple", "xiaomi", "pixel", "huawei", "oppo", "telephone", "telephones", "smartphone", "smartphones"},
		answer: "Le comparateur référence les téléphones des principales marques (Apple, Samsung, Google, Xiaomi...). " +
			"Vous pouvez comparer leur prix, leur capacité de stockage et leur compatibilité 5G.",
	},
	{
		name:     "how_it_works",
		keywords: []string{"comment ca marche", "comment ca fonctionne", "fonctionnement", "qui etes vous", "gratuit"},
		answer: "Notre comparateur est gratuit et indépendant : il rassemble les offres des opérateurs pour que vous puissiez les comparer. " +
			"Nous ne vendons pas d'abonnement directement, la souscription se fait sur le site de l'opérateur.",
	},
	{
		name:     "how_to_compare",
		keywords: []string{"comparer", "comparaison", "comparateur", "choisir", "filtre", "filtres", "meilleur", "meilleure"},
		answer: "Pour comparer, choisissez la catégorie (forfait, box ou téléphone), puis affinez avec les filtres : " +
			"prix, data, engagement, réseau 5G. Les offres s'affichent côte à côte pour faciliter votre choix.",
	},
}

// FallbackResponder 后端不可用时的规则回答，纯函数，不会 panic
type FallbackResponder struct {
	logger *slog.Logger
}

// NewFallbackResponder 创建规则回答器
func NewFallbackResponder() *FallbackResponder {
	return &FallbackResponder{
		logger: log.NewModuleLogger("chat", "fallback"),
	}
}

// Respond 根据用户消息返回固定回答
// recentUserTexts 为会话中全部用户消息（含当前消息），先做重复提问检测再按规则匹配
func (f *FallbackResponder) Respond(userText string, recentUserTexts []string) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Fallback responder panicked", "panic", r)
			answer = GenericMessage
		}
	}()

	if IsRepetition(recentUserTexts) {
		return RepetitionMessage
	}

	padded := " " + strings.Join(normalizeWords(userText), " ") + " "
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return rule.answer
			}
		}
	}
	return GenericMessage
}

// IsRepetition 最近两条用户消息是否几乎相同
func IsRepetition(userTexts []string) bool {
	if len(userTexts) < 2 {
		return false
	}
	a := wordSet(userTexts[len(userTexts)-2])
	b := wordSet(userTexts[len(userTexts)-1])
	return Jaccard(a, b) > RepetitionThreshold
}

// Jaccard |A∩B| / |A∪B|，两个空集返回 0
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range normalizeWords(text) {
		if len([]rune(w)) >= minSimilarityWordLen {
			set[w] = struct{}{}
		}
	}
	return set
}

// normalizeWords 小写、去掉重音、标点替换为空格后按空白切分
func normalizeWords(text string) []string {
	folded, _, err := transform.String(accentFolder(), strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Fields(cleaned)
}

// accentFolder 每次新建，transform.Transformer 不能并发复用
func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
