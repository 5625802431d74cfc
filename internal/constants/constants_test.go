package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobURLPathEscapesID(t *testing.T) {
	assert.Equal(t, "/api/job-urls/42", JobURLPath("42"))
	assert.Equal(t, "/api/job-urls/a%2Fb%3Fc%23d", JobURLPath("a/b?c#d"), "id 中的 / ? # 不能改变请求路径")
	assert.Equal(t, "/api/job-urls/with%20space", JobURLPath("with space"))
}
