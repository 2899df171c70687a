// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

/*
Package config loads shoprec configuration with Koanf.

Sources are layered, later ones overriding earlier ones:

 1. Built-in defaults
 2. A YAML file: the -config flag, else CONFIG_PATH, else the first of
    shoprec.yaml, shoprec.yml, /etc/shoprec/config.yaml, /etc/shoprec/config.yml
 3. SHOPREC_* environment variables

Example file:

	data:
	  dir: ./exports
	  orders: [orders_selection.csv, orders.csv]
	  delimiter: "|"
	  view_item_type: Номенклатура
	training:
	  epochs: 30
	  dim: 64
	  ease_max_items: 15000
	artifacts:
	  backend: badger
	  path: /var/lib/shoprec
	logging:
	  level: debug
	  format: console
	metrics:
	  textfile_path: /var/lib/node_exporter/shoprec.prom

Environment variables (selection):

	SHOPREC_DATA_DIR           data.dir
	SHOPREC_ORDERS             data.orders (comma-separated)
	SHOPREC_EPOCHS             training.epochs
	SHOPREC_LEARNING_RATE      training.learning_rate
	SHOPREC_SEED               training.seed
	SHOPREC_EASE_MAX_ITEMS     training.ease_max_items
	SHOPREC_ARTIFACTS_BACKEND  artifacts.backend (file|badger)
	SHOPREC_ARTIFACTS_PATH     artifacts.path
	SHOPREC_LOG_LEVEL          logging.level
	SHOPREC_METRICS_TEXTFILE   metrics.textfile_path

Validation uses go-playground/validator tags through the validation package,
followed by the engine's own range checks.
*/
package config
