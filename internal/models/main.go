package models

// ModelRegistry lists every model AutoMigrate should manage.
var ModelRegistry = []interface{}{
	&WaitlistUser{},
}
