// Package docs holds the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/governance/v1/stake/deposit": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Deposit stake",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.StakeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/stake/withdraw": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Withdraw stake",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.StakeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/delegation": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Delegate voting power",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.DelegateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Revoke delegation",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/members/{account}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Read member",
                "parameters": [
                    {
                        "type": "string",
                        "name": "account",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/power": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Total stake and voting power",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/treasury": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Treasury balances",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/treasury/categories/{category}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Category balance",
                "parameters": [
                    {
                        "type": "string",
                        "name": "category",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/treasury/categories/{category}/limit": {
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Set category limit",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "category",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.CategoryLimitRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/treasury/receive": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Receive funds",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.ReceiveFundsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/treasury/allocate": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Allocate funds to a category",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.AllocateFundsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/treasury/transfer": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Transfer funds",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.TransferFundsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/treasury/pause": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Pause treasury",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/treasury/resume": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Resume treasury",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/proposals": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Create proposal",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.CreateProposalRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            },
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "List proposals",
                "parameters": [
                    {
                        "type": "integer",
                        "name": "offset",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/proposals/{proposal_id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Read proposal",
                "parameters": [
                    {
                        "type": "integer",
                        "name": "proposal_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/proposals/{proposal_id}/receipts/{voter}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Read vote receipt",
                "parameters": [
                    {
                        "type": "integer",
                        "name": "proposal_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "voter",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/proposals/{proposal_id}/votes": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Cast vote",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "name": "proposal_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.CastVoteRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/proposals/{proposal_id}/queue": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Queue proposal",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "name": "proposal_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/proposals/{proposal_id}/execute": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Execute proposal",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "name": "proposal_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/proposals/{proposal_id}/cancel": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Cancel proposal",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "name": "proposal_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/governance/v1/params/{proposal_type}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Read proposal parameters",
                "parameters": [
                    {
                        "type": "string",
                        "name": "proposal_type",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "governance"
                ],
                "summary": "Update proposal parameters",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "proposal_type",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/governance.UpdateParamsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/authz/v1/check": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "authorization"
                ],
                "summary": "Check permission",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/authorization.CheckPermissionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/authz/v1/check-batch": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "authorization"
                ],
                "summary": "Check permissions",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/authorization.CheckBatchRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/authz/v1/roles": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "authorization"
                ],
                "summary": "List assignable roles",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/authz/v1/users/{user_id}/roles": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "authorization"
                ],
                "summary": "List user roles",
                "parameters": [
                    {
                        "type": "string",
                        "name": "user_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/authz/v1/users/{user_id}/roles/grant": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "authorization"
                ],
                "summary": "Grant role",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "user_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/authorization.GrantRoleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/authz/v1/users/{user_id}/roles/revoke": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "authorization"
                ],
                "summary": "Revoke role",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Caller",
                        "name": "X-User-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request id",
                        "name": "X-Request-Id",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "user_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false
                    },
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/authorization.RevokeRoleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/governance.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "governance.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "kind": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "governance.StakeRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "integer"
                }
            }
        },
        "governance.DelegateRequest": {
            "type": "object",
            "properties": {
                "to": {
                    "type": "string"
                }
            }
        },
        "governance.CategoryLimitRequest": {
            "type": "object",
            "properties": {
                "limit": {
                    "type": "integer"
                }
            }
        },
        "governance.ReceiveFundsRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "integer"
                }
            }
        },
        "governance.AllocateFundsRequest": {
            "type": "object",
            "properties": {
                "category": {
                    "type": "string"
                },
                "amount": {
                    "type": "integer"
                }
            }
        },
        "governance.TransferFundsRequest": {
            "type": "object",
            "properties": {
                "recipient": {
                    "type": "string"
                },
                "amount": {
                    "type": "integer"
                }
            }
        },
        "governance.CreateProposalRequest": {
            "type": "object",
            "properties": {
                "recipient": {
                    "type": "string"
                },
                "amount": {
                    "type": "integer"
                },
                "description": {
                    "type": "string"
                },
                "proposal_type": {
                    "type": "string"
                }
            }
        },
        "governance.CastVoteRequest": {
            "type": "object",
            "properties": {
                "option": {
                    "type": "string"
                }
            }
        },
        "governance.UpdateParamsRequest": {
            "type": "object",
            "properties": {
                "quorum_bps": {
                    "type": "integer"
                },
                "approval_bps": {
                    "type": "integer"
                },
                "timelock": {
                    "type": "string"
                },
                "voting_window": {
                    "type": "integer"
                }
            }
        },
        "authorization.CheckPermissionRequest": {
            "type": "object",
            "properties": {
                "user_id": {
                    "type": "string"
                },
                "permission": {
                    "type": "string"
                }
            }
        },
        "authorization.CheckBatchRequest": {
            "type": "object",
            "properties": {
                "user_id": {
                    "type": "string"
                },
                "permissions": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "authorization.GrantRoleRequest": {
            "type": "object",
            "properties": {
                "role_id": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "authorization.RevokeRoleRequest": {
            "type": "object",
            "properties": {
                "role_id": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Commonwealth API",
	Description:      "Stake-weighted governance over a categorized treasury.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
