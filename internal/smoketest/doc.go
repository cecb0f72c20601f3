// Package smoketest содержит тесты системной целостности rb-ci.
//
// Проверяется, что все команды и старые имена зарегистрированы,
// Name() и Description() заполнены, а JSON-вывод каждой команды
// в dry-run и при ошибке конфигурации имеет единую структуру.
//
// Unit-тесты логики команд лежат в пакетах обработчиков.
package smoketest
