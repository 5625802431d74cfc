package constants

// Redis Key 格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// StoreModulePrefix 本地存储模块
	StoreModulePrefix = "store"

	// KeyStoreHash 某个命名空间下的全部键值 (HASH)
	// 格式: app:store:{namespace}
	KeyStoreHash = AppPrefix + ":" + StoreModulePrefix + ":%s"
)
