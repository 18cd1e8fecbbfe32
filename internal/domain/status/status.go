// Package status 定义知识库基础设施的就绪状态
package status

// SystemStatus 某一时刻的就绪快照，每次检查重新计算，不持久化
type SystemStatus struct {
	TableExists        bool `json:"tableExists"`
	FunctionExists     bool `json:"functionExists"`
	EdgeFunctionsReady bool `json:"edgeFunctionsReady"`
	APIKeyConfigured   bool `json:"apiKeyConfigured"`
}

// Readiness 就绪等级
type Readiness string

const (
	// ReadinessReady 全部就绪
	ReadinessReady Readiness = "ready"
	// ReadinessPartial 表和检索函数存在，但回答网关或 API Key 未就绪
	ReadinessPartial Readiness = "partial"
	// ReadinessNotReady 其他情况
	ReadinessNotReady Readiness = "not-ready"
)

// Classify 根据四个布尔值计算就绪等级
func Classify(s SystemStatus) Readiness {
	switch {
	case s.TableExists && s.FunctionExists && s.EdgeFunctionsReady && s.APIKeyConfigured:
		return ReadinessReady
	case s.TableExists && s.FunctionExists:
		return ReadinessPartial
	default:
		return ReadinessNotReady
	}
}

// Guidance 返回各等级对应的处理建议，供管理面板展示
func (r Readiness) Guidance() string {
	switch r {
	case ReadinessReady:
		return "Le système RAG est entièrement opérationnel."
	case ReadinessPartial:
		return "La base de connaissances est prête, mais la passerelle de réponse ou la clé API n'est pas configurée."
	default:
		return "La table des documents ou la fonction de recherche est absente : exécutez les migrations."
	}
}
