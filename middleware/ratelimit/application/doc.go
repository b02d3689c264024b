// Package application contém os casos de uso (regras de aplicação) do rate
// limit adaptativo.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Evaluate(req) retorna uma Decision (admitir/negar + motivo +
// metadados de cota); Service.ReportLogin registra o desfecho de uma
// autenticação reportado pelo colaborador.
package application
