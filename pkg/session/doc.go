/*
Package session serializes macro executions that target the same scene.

A scene is identified by a caller-chosen key. Executions sharing a key run one at a
time within the process, and across replicas when a distributed locker is configured.
*/
package session
