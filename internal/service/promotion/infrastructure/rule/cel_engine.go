// internal/service/promotion/infrastructure/rule/cel_engine.go
package rule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"orderhub/internal/service/promotion/domain"
)

// CELRuleEngine 是 domain.RuleEngine 的 CEL 实现。
// 券的范围规则以 CEL 表达式存储，例如：
//
//	subtotal >= 50000 && categoryIds.exists(c, c == "books")
//
// 编译结果按表达式缓存，同一张券的规则只编译一次。
type CELRuleEngine struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELRuleEngine 创建规则引擎并声明事实变量。
func NewCELRuleEngine() (*CELRuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("subtotal", cel.IntType),
		cel.Variable("userId", cel.StringType),
		cel.Variable("skuIds", cel.ListType(cel.StringType)),
		cel.Variable("categoryIds", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}
	return &CELRuleEngine{env: env, programs: make(map[string]cel.Program)}, nil
}

// Evaluate 实现了 domain.RuleEngine 接口。
func (e *CELRuleEngine) Evaluate(ruleExpr string, fact domain.Fact) (bool, error) {
	prg, err := e.program(ruleExpr)
	if err != nil {
		return false, err
	}

	skuIDs := fact.SkuIDs
	if skuIDs == nil {
		skuIDs = []string{}
	}
	categoryIDs := fact.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []string{}
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"subtotal":    fact.Subtotal,
		"userId":      fact.UserID,
		"skuIds":      skuIDs,
		"categoryIds": categoryIDs,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate rule: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule did not evaluate to a boolean: %T", out.Value())
	}
	return result, nil
}

func (e *CELRuleEngine) program(ruleExpr string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[ruleExpr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(ruleExpr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile rule: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build rule program: %w", err)
	}

	e.mu.Lock()
	e.programs[ruleExpr] = prg
	e.mu.Unlock()
	return prg, nil
}
