package knowledge

// IngestItem 待入库的文档
type IngestItem struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// IngestResult 单个文档的入库结果
type IngestResult struct {
	Success  bool     `json:"success"`
	ID       string   `json:"id,omitempty"`
	Error    string   `json:"error,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// IngestReport 批量入库汇总
type IngestReport struct {
	Success  bool            `json:"success"`
	Inserted int             `json:"inserted"`
	Failed   int             `json:"failed"`
	Results  []*IngestResult `json:"results"`
}

// SourceDocument 切分前的完整源文档
type SourceDocument struct {
	Title    string
	Source   string
	Category string
	Content  string
	Extra    Metadata // 额外元数据，会合并到每个片段
}
