package permission

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
)

// Everyone 匹配所有身份的主體
const Everyone = "everyone"

// AccessRule 一條訪問控制規則
// Exclusive 規則的主體一旦匹配即決定結果，後續規則不再參與（POSIX 權限類別）
type AccessRule struct {
	Subject   string
	Rights    Right
	Allow     bool
	Exclusive bool
}

// Identity 當前進程身份所屬的主體集合（用戶自身與所在組）
type Identity struct {
	Groups []string
}

// Has 報告身份是否包含主體
func (id Identity) Has(subject string) bool {
	return subject == Everyone || slices.Contains(id.Groups, subject)
}

// ACLReader 讀取目錄的訪問控制規則
type ACLReader interface {
	ReadRules(path string) ([]AccessRule, error)
}

// IdentitySource 提供當前進程身份
type IdentitySource interface {
	Current() (Identity, error)
	IsPrivileged() bool
}

// OutcomeKind 探測結果類型
type OutcomeKind int

const (
	Granted OutcomeKind = iota
	Denied
	ProbeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case Granted:
		return "Granted"
	case Denied:
		return "Denied"
	case ProbeFailed:
		return "ProbeFailed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome 權限探測結果，ProbeFailed 時 Reason 記錄原因
type Outcome struct {
	Kind   OutcomeKind
	Reason error
}

// Allowed 只有 Granted 視為有權限，ProbeFailed 按 Denied 處理
func (o Outcome) Allowed() bool {
	return o.Kind == Granted
}

func (o Outcome) String() string {
	if o.Kind == ProbeFailed && o.Reason != nil {
		return fmt.Sprintf("ProbeFailed(%v)", o.Reason)
	}
	return o.Kind.String()
}

// Probe 權限探測器
// 任何探測內部錯誤都不會向外傳播，只會得到 ProbeFailed
type Probe struct {
	reader   ACLReader
	identity IdentitySource
	logger   *zap.Logger
}

func NewProbe(reader ACLReader, identity IdentitySource, logger *zap.Logger) *Probe {
	return &Probe{
		reader:   reader,
		identity: identity,
		logger:   logger,
	}
}

// NewSystemProbe 使用當前操作系統的 ACL 與令牌實現
func NewSystemProbe(logger *zap.Logger) *Probe {
	return NewProbe(newSystemACLReader(), newSystemIdentity(), logger)
}

// Check 判斷當前身份是否擁有 path 上的 right 權限
func (p *Probe) Check(path string, right Right) (out Outcome) {
	if path == "" {
		return Outcome{Kind: Denied}
	}

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Kind: ProbeFailed, Reason: fmt.Errorf("探測過程發生異常: %v", r)}
		}
	}()

	id, err := p.identity.Current()
	if err != nil {
		return Outcome{Kind: ProbeFailed, Reason: fmt.Errorf("獲取進程身份失敗: %w", err)}
	}

	return p.evaluate(path, right, id)
}

// CheckAs 以指定身份判斷權限，用於授權後確認受益者的訪問
func (p *Probe) CheckAs(path string, right Right, id Identity) (out Outcome) {
	if path == "" {
		return Outcome{Kind: Denied}
	}

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Kind: ProbeFailed, Reason: fmt.Errorf("探測過程發生異常: %v", r)}
		}
	}()

	return p.evaluate(path, right, id)
}

func (p *Probe) evaluate(path string, right Right, id Identity) Outcome {
	rules, err := p.reader.ReadRules(path)
	if err != nil {
		return Outcome{Kind: ProbeFailed, Reason: fmt.Errorf("讀取訪問控制列表失敗: %w", err)}
	}

	for _, rule := range rules {
		if !id.Has(rule.Subject) {
			continue
		}
		if rule.Allow && rule.Rights.Contains(right) {
			return Outcome{Kind: Granted}
		}
		if rule.Exclusive {
			return Outcome{Kind: Denied}
		}
	}

	return Outcome{Kind: Denied}
}

// HasDirectoryPermission 檢查目錄權限，探測失敗視為無權限
func (p *Probe) HasDirectoryPermission(path string, right Right) bool {
	out := p.Check(path, right)
	if out.Kind == ProbeFailed {
		p.logger.Warn("權限探測失敗，按無權限處理",
			logger.Path("path", path),
			zap.Stringer("right", right),
			zap.Error(out.Reason),
		)
	}
	return out.Allowed()
}

// IsPrivilegedUser 報告進程是否已具有管理員權限
func (p *Probe) IsPrivilegedUser() (privileged bool) {
	defer func() {
		if r := recover(); r != nil {
			privileged = false
		}
	}()
	return p.identity.IsPrivileged()
}

// CanWriteToTargetDirectory 已提權的進程直接返回 true
func (p *Probe) CanWriteToTargetDirectory(dir string) bool {
	if p.IsPrivilegedUser() {
		return true
	}

	ok := p.HasDirectoryPermission(dir, WriteTarget)
	p.logger.Debug("目錄寫入權限檢查",
		logger.Path("dir", dir),
		zap.Bool("granted", ok),
	)
	return ok
}
