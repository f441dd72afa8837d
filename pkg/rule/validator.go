// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
package rule

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建. 统一使用 `rule` 作为 tag 名，
// 并注册领域别名：checksum（SHA-256 十六进制串）.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
			inst.SetTagName("rule")
			registerAliases()

			return
		}
	}

	inst = validator.New()
	inst.SetTagName("rule")
	registerAliases()
}

// registerAliases 注册领域规则别名.
func registerAliases() {
	// 客户端提交的校验和按 SHA-256 十六进制格式验证
	inst.RegisterAlias("checksum", "len=64,hexadecimal")
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// ValidateStruct 对结构体执行完整校验.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar(checksum, "required,checksum").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}
