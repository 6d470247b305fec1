package transport

// DefaultBaseURL is the root of the Toodledo v3 API.
const DefaultBaseURL = "https://api.toodledo.com/3"

// Endpoint is an API path relative to the base URL.
type Endpoint string

// Toodledo v3 endpoints.
const (
	AccountGet Endpoint = "account/get.php"

	TasksGet     Endpoint = "tasks/get.php"
	TasksAdd     Endpoint = "tasks/add.php"
	TasksEdit    Endpoint = "tasks/edit.php"
	TasksDelete  Endpoint = "tasks/delete.php"
	TasksDeleted Endpoint = "tasks/deleted.php"

	FoldersGet    Endpoint = "folders/get.php"
	FoldersAdd    Endpoint = "folders/add.php"
	FoldersEdit   Endpoint = "folders/edit.php"
	FoldersDelete Endpoint = "folders/delete.php"

	ContextsGet    Endpoint = "contexts/get.php"
	ContextsAdd    Endpoint = "contexts/add.php"
	ContextsEdit   Endpoint = "contexts/edit.php"
	ContextsDelete Endpoint = "contexts/delete.php"
)

func (e Endpoint) String() string {
	return string(e)
}

// URL joins the endpoint onto baseURL.
func (e Endpoint) URL(baseURL string) string {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return baseURL + "/" + string(e)
}
