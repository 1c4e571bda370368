package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable sync settings
type RuntimeConfig struct {
	SearchBaseURL string `json:"search_base_url"`
	SearchToken   string `json:"search_token,omitempty"`
}

var (
	runtimeConfig     RuntimeConfig
	runtimeConfigLock sync.RWMutex
)

// InitRuntimeConfig initializes runtime config from static config
func InitRuntimeConfig(searchBaseURL, searchToken string) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{
		SearchBaseURL: searchBaseURL,
		SearchToken:   searchToken,
	}
}

// GetRuntimeSearchBaseURL returns the current remote API base URL
func GetRuntimeSearchBaseURL() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.SearchBaseURL
}

// GetRuntimeSearchToken returns the current remote API bearer token
func GetRuntimeSearchToken() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.SearchToken
}

// UpdateSyncSettingsRequest represents the request body for updating sync settings
type UpdateSyncSettingsRequest struct {
	SearchBaseURL string `json:"search_base_url" binding:"required"`
	SearchToken   string `json:"search_token,omitempty"`
}

// GetSyncSettings returns current sync configuration
// GET /api/settings/sync
func GetSyncSettings(c *gin.Context) {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"search_base_url": runtimeConfig.SearchBaseURL,
		"token_set":       runtimeConfig.SearchToken != "",
	})
}

// UpdateSyncSettings updates sync configuration at runtime
// PUT /api/settings/sync
func UpdateSyncSettings(c *gin.Context) {
	var req UpdateSyncSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runtimeConfigLock.Lock()
	runtimeConfig.SearchBaseURL = req.SearchBaseURL
	if req.SearchToken != "" {
		runtimeConfig.SearchToken = req.SearchToken
	}
	runtimeConfigLock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":         "sync settings updated successfully",
		"search_base_url": req.SearchBaseURL,
	})
}
