package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           adapterd API
// @version         1.0
// @description     HTTP API for adapter patching and intent/slot classification.
//
// @contact.name   adapterd maintainers
// @contact.url    https://github.com/your-org/adapterd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
